package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLaunchServer(t *testing.T, capture *http.Request) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*capture = *r
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		capture.Header.Set("X-Test-Agent-ID", asString(body["agent_id"]))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"launch_url": "https://games.example/play/abc",
		})
	}))
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func TestLaunchGameBearerAuth(t *testing.T) {
	var got http.Request
	srv := newLaunchServer(t, &got)
	defer srv.Close()

	c := NewPlayFiversClient(PlayFiversConfig{
		BaseURL:    srv.URL,
		AgentID:    "agent-1",
		AgentToken: "tok-123",
		AuthMethod: AuthBearer,
	}, discardLogger())

	result, err := c.LaunchGame(context.Background(), "user-1", "game-9", 5000)
	require.NoError(t, err)
	assert.Equal(t, "https://games.example/play/abc", result.LaunchURL)
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.Empty(t, got.Header.Get("X-Test-Agent-ID"), "agent creds stay out of the body")
}

func TestLaunchGameAPIKeyAuth(t *testing.T) {
	var got http.Request
	srv := newLaunchServer(t, &got)
	defer srv.Close()

	c := NewPlayFiversClient(PlayFiversConfig{
		BaseURL:    srv.URL,
		AgentID:    "agent-1",
		AgentToken: "tok-123",
		AuthMethod: AuthAPIKey,
	}, discardLogger())

	_, err := c.LaunchGame(context.Background(), "user-1", "game-9", 5000)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got.Header.Get("X-API-Key"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestLaunchGameAgentAuth(t *testing.T) {
	var got http.Request
	srv := newLaunchServer(t, &got)
	defer srv.Close()

	c := NewPlayFiversClient(PlayFiversConfig{
		BaseURL:     srv.URL,
		AgentID:     "agent-1",
		AgentSecret: "sec",
		AgentToken:  "tok-123",
		AuthMethod:  AuthAgent,
	}, discardLogger())

	_, err := c.LaunchGame(context.Background(), "user-1", "game-9", 5000)
	require.NoError(t, err)
	assert.Empty(t, got.Header.Get("Authorization"))
	assert.Equal(t, "agent-1", got.Header.Get("X-Test-Agent-ID"), "agent creds ride in the body")
}

func TestListGamesDegradesWhenUnreachable(t *testing.T) {
	c := NewPlayFiversClient(PlayFiversConfig{
		BaseURL:    "http://127.0.0.1:1",
		AgentToken: "tok",
	}, discardLogger())

	games, err := c.ListGames(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestListGamesDecodesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pgsoft", r.URL.Query().Get("provider_id"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"game_id": "g1", "provider_id": "pgsoft", "name": "Fortune Tiger", "rtp": 96.8},
			},
		})
	}))
	defer srv.Close()

	c := NewPlayFiversClient(PlayFiversConfig{BaseURL: srv.URL, AgentToken: "tok"}, discardLogger())

	games, err := c.ListGames(context.Background(), "pgsoft")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Fortune Tiger", games[0].Name)
	assert.Equal(t, 96.8, games[0].Rtp)
}
