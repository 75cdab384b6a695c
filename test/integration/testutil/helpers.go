//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/auth"
	"github.com/turbobet/platform/internal/domain"
)

// RegisterUser creates a new user and returns the auth token and user ID.
func (env *TestEnv) RegisterUser(username, password string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterUser: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token  string    `json:"token"`
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterUser: decode: %v", err)
	}
	return result.Token, result.UserID
}

// LoginUser authenticates an existing user and returns the auth token.
func (env *TestEnv) LoginUser(username, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginUser: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginUser: decode: %v", err)
	}
	return result.Token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// AuthPATCH performs an authenticated PATCH request with a JSON body.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		env.t.Fatalf("AuthPATCH %s: encode: %v", path, err)
	}
	req, err := http.NewRequest("PATCH", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("AuthPATCH %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthPATCH %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("GET", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.POST(path, body, token)
}

// SeedOffer inserts a bonus offer directly and returns its ID.
func (env *TestEnv) SeedOffer(kind domain.OfferKind, percentage float64, fixed, minDeposit int64, maxBonus *int64, multiplier float64) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var offerID uuid.UUID
	err := env.Pool.QueryRow(ctx, `
		INSERT INTO bonuses (name, kind, percentage, fixed_amount, min_deposit, max_bonus, rollover_multiplier, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true) RETURNING id`,
		fmt.Sprintf("Test %s offer", kind), string(kind), percentage, fixed, minDeposit, maxBonus, multiplier).Scan(&offerID)
	if err != nil {
		env.t.Fatalf("SeedOffer: %v", err)
	}
	return offerID
}

// Deposit initiates a PIX deposit through the API and returns its request number.
func (env *TestEnv) Deposit(token string, amount int64) string {
	env.t.Helper()
	resp := env.AuthPOST("/payments/deposits", map[string]int64{"amount": amount}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("Deposit: expected 201, got %d", resp.StatusCode)
	}

	var txn struct {
		RequestNumber string `json:"request_number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&txn); err != nil {
		env.t.Fatalf("Deposit: decode: %v", err)
	}
	return txn.RequestNumber
}

// SettleDeposit replays the gateway settlement callback for a request number.
func (env *TestEnv) SettleDeposit(requestNumber string) {
	env.t.Helper()
	resp := env.POST("/webhooks/payment", map[string]string{
		"requestNumber": requestNumber,
		"status":        "PAID_OUT",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("SettleDeposit: expected 200, got %d", resp.StatusCode)
	}
}

// DepositAndSettle runs the full deposit flow: initiate, then settle via the
// gateway callback.
func (env *TestEnv) DepositAndSettle(token string, amount int64) {
	env.t.Helper()
	env.SettleDeposit(env.Deposit(token, amount))
}

// PlayRound replays an aggregator game-round callback for the user.
func (env *TestEnv) PlayRound(userID uuid.UUID, betAmount, winAmount int64) *http.Response {
	env.t.Helper()
	return env.POST("/webhooks/game", map[string]interface{}{
		"user_code":  userID.String(),
		"bet_amount": betAmount,
		"win_amount": winAmount,
	}, "")
}

// AdminToken generates an admin-realm JWT without touching the database.
func (env *TestEnv) AdminToken() string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin")
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// SeedGame inserts a provider and an active game, returning the game's
// external code.
func (env *TestEnv) SeedGame(externalID string) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var providerID uuid.UUID
	err := env.Pool.QueryRow(ctx, `
		INSERT INTO providers (external_id, name, active)
		VALUES ($1, 'Test Provider', true)
		ON CONFLICT (external_id) DO UPDATE SET active = true
		RETURNING id`,
		"test-provider").Scan(&providerID)
	if err != nil {
		env.t.Fatalf("SeedGame: insert provider: %v", err)
	}

	_, err = env.Pool.Exec(ctx, `
		INSERT INTO games (provider_id, external_id, name, active)
		VALUES ($1, $2, 'Test Game', true)
		ON CONFLICT (provider_id, external_id) DO UPDATE SET active = true`,
		providerID, externalID)
	if err != nil {
		env.t.Fatalf("SeedGame: insert game: %v", err)
	}
	return externalID
}
