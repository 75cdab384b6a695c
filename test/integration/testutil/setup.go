//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/app"
	"github.com/turbobet/platform/internal/auth"
	"github.com/turbobet/platform/internal/provider"
)

const TestJWTSecret = "integration-test-secret"

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

// requireDSN returns the test database DSN or skips the test when
// DATABASE_URL is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	return dsn
}

func runMigrations(dsn string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	m, err := newMigrate(fmt.Sprintf("file://%s/db/migrations", root), dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err.Error() != "no change" {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireDSN(t)

	poolOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
			return
		}

		if err := runMigrations(dsn); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			sharedPool.Close()
			sharedPool = nil
			return
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the
// real router and the DATABASE_URL test database.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)

	jwtMgr := auth.NewJWTManager(TestJWTSecret, 168*time.Hour, 8*time.Hour)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := app.NewRouter(app.RouterDeps{
		Pool:   pool,
		JWTMgr: jwtMgr,
		Logger: logger,
		PlayFivers: provider.PlayFiversConfig{
			BaseURL:    "http://localhost:4002",
			AuthMethod: provider.AuthBearer,
		},
	})

	server := httptest.NewServer(router)

	env := &TestEnv{
		Server: server,
		Pool:   pool,
		JWTMgr: jwtMgr,
		t:      t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}
