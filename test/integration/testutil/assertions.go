//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/turbobet/platform/internal/infra"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertBalance asserts a user's balance and total wagered in centavos.
func AssertBalance(t *testing.T, env *TestEnv, userID uuid.UUID, balance, totalWagered int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var balNum, wagNum pgtype.Numeric
	err := env.Pool.QueryRow(ctx,
		"SELECT balance, total_wagered FROM users WHERE id = $1", userID).Scan(&balNum, &wagNum)
	if err != nil {
		t.Fatalf("AssertBalance: query: %v", err)
	}
	bal, err := infra.NumericToInt64(balNum)
	if err != nil {
		t.Fatalf("AssertBalance: convert balance: %v", err)
	}
	wag, err := infra.NumericToInt64(wagNum)
	if err != nil {
		t.Fatalf("AssertBalance: convert total_wagered: %v", err)
	}
	if bal != balance {
		t.Errorf("balance: expected %d, got %d", balance, bal)
	}
	if wag != totalWagered {
		t.Errorf("total_wagered: expected %d, got %d", totalWagered, wag)
	}
}

// GrantStatus returns the status of the user's most recent bonus grant.
func GrantStatus(t *testing.T, env *TestEnv, userID uuid.UUID) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var status string
	err := env.Pool.QueryRow(ctx, `
		SELECT status FROM user_bonuses
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID).Scan(&status)
	if err != nil {
		t.Fatalf("GrantStatus: %v", err)
	}
	return status
}

// GrantOfferKinds returns the offer kinds behind a user's grants, oldest first.
func GrantOfferKinds(t *testing.T, env *TestEnv, userID uuid.UUID) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := env.Pool.Query(ctx, `
		SELECT b.kind FROM user_bonuses ub
		JOIN bonuses b ON b.id = ub.bonus_id
		WHERE ub.user_id = $1 ORDER BY ub.created_at ASC`, userID)
	if err != nil {
		t.Fatalf("GrantOfferKinds: %v", err)
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			t.Fatalf("GrantOfferKinds: scan: %v", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

// CountOutboxEvents returns the number of outbox events of a type for a user.
func CountOutboxEvents(t *testing.T, env *TestEnv, userID uuid.UUID, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM event_outbox
		WHERE partition_key = $1 AND event_type = $2`,
		userID.String(), eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
