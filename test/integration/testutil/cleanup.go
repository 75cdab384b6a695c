//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates all tables in dependency-safe order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"user_bets",
		"user_bonuses",
		"bonuses",
		"games",
		"providers",
		"transactions",
		"event_outbox",
		"settings",
		"users",
	}

	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
