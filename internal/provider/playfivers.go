package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PlayFivers auth methods. "agent" puts the credentials in each request body
// instead of a header.
const (
	AuthBearer = "bearer"
	AuthAPIKey = "api_key"
	AuthAgent  = "agent"
)

// PlayFiversConfig holds agent credentials and the auth method.
type PlayFiversConfig struct {
	BaseURL     string
	AgentID     string
	AgentSecret string
	AgentToken  string
	AuthMethod  string
}

// PlayFiversClient communicates with the PlayFivers game aggregator.
type PlayFiversClient struct {
	cfg    PlayFiversConfig
	logger *slog.Logger
	client *http.Client
}

// NewPlayFiversClient creates a PlayFivers HTTP client.
func NewPlayFiversClient(cfg PlayFiversConfig, logger *slog.Logger) *PlayFiversClient {
	if cfg.AuthMethod == "" {
		cfg.AuthMethod = AuthBearer
	}
	if cfg.AgentID == "" || cfg.AgentToken == "" {
		logger.Warn("playfivers credentials not configured")
	}
	return &PlayFiversClient{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// PlayFiversGame is a catalog entry returned by the aggregator.
type PlayFiversGame struct {
	GameID     string  `json:"game_id"`
	ProviderID string  `json:"provider_id"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"image_url,omitempty"`
	Rtp        float64 `json:"rtp,omitempty"`
}

// PlayFiversProvider is a provider entry returned by the aggregator.
type PlayFiversProvider struct {
	ProviderID string `json:"provider_id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
}

// LaunchResult holds the playable game URL for a user session.
type LaunchResult struct {
	LaunchURL string `json:"launch_url"`
	SessionID string `json:"session_id,omitempty"`
}

type playFiversEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	LaunchURL string          `json:"launch_url,omitempty"`
}

// LaunchGame requests a launch URL for the given user and game.
func (c *PlayFiversClient) LaunchGame(ctx context.Context, userCode, gameCode string, balance int64) (*LaunchResult, error) {
	body := map[string]interface{}{
		"user_code":    userCode,
		"game_code":    gameCode,
		"user_balance": balance,
	}
	env, err := c.post(ctx, "/v1/game_launch", body)
	if err != nil {
		return nil, fmt.Errorf("launch game: %w", err)
	}

	result := &LaunchResult{LaunchURL: env.LaunchURL}
	if result.LaunchURL == "" && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, fmt.Errorf("decode launch result: %w", err)
		}
	}
	if result.LaunchURL == "" {
		return nil, fmt.Errorf("launch game: empty launch_url (%s)", env.Error)
	}
	return result, nil
}

// ListProviders returns the aggregator's provider catalog. Unreachable
// upstream degrades to an empty list so a sync run is a no-op rather than
// an error page.
func (c *PlayFiversClient) ListProviders(ctx context.Context) ([]PlayFiversProvider, error) {
	env, err := c.get(ctx, "/v1/providers", nil)
	if err != nil {
		c.logger.Warn("playfivers unreachable, returning empty provider list", "error", err)
		return []PlayFiversProvider{}, nil
	}

	var providers []PlayFiversProvider
	if err := json.Unmarshal(env.Data, &providers); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	return providers, nil
}

// ListGames returns the aggregator's game catalog, optionally scoped to one
// provider.
func (c *PlayFiversClient) ListGames(ctx context.Context, providerID string) ([]PlayFiversGame, error) {
	var params url.Values
	if providerID != "" {
		params = url.Values{"provider_id": {providerID}}
	}
	env, err := c.get(ctx, "/v1/games", params)
	if err != nil {
		c.logger.Warn("playfivers unreachable, returning empty game list", "error", err)
		return []PlayFiversGame{}, nil
	}

	var games []PlayFiversGame
	if err := json.Unmarshal(env.Data, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	return games, nil
}

// TestConnection checks the aggregator health endpoint.
func (c *PlayFiversClient) TestConnection(ctx context.Context) error {
	_, err := c.get(ctx, "/health", nil)
	return err
}

func (c *PlayFiversClient) get(ctx context.Context, path string, params url.Values) (*playFiversEnvelope, error) {
	u := c.cfg.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *PlayFiversClient) post(ctx context.Context, path string, body map[string]interface{}) (*playFiversEnvelope, error) {
	if strings.EqualFold(c.cfg.AuthMethod, AuthAgent) {
		body["agent_id"] = c.cfg.AgentID
		body["agent_secret"] = c.cfg.AgentSecret
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *PlayFiversClient) do(req *http.Request) (*playFiversEnvelope, error) {
	req.Header.Set("Content-Type", "application/json")
	switch strings.ToLower(c.cfg.AuthMethod) {
	case AuthAPIKey:
		req.Header.Set("X-API-Key", c.cfg.AgentToken)
	case AuthAgent:
		// Credentials travel in the request body.
	default:
		req.Header.Set("Authorization", "Bearer "+c.cfg.AgentToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("playfivers request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("playfivers returned %d", resp.StatusCode)
	}

	var env playFiversEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}
