package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbobet/platform/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchFiltersByEvent(t *testing.T) {
	var hits int32
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(discardLogger())
	webhooks := []domain.WebhookConfig{
		{ID: "a", URL: srv.URL, Enabled: true, Events: []string{"deposit_paid"}},
		{ID: "b", URL: srv.URL, Enabled: true, Events: []string{"user_registered"}},
	}

	d.Dispatch(context.Background(), webhooks, domain.TrackingEvent{
		Event: "deposit_paid",
		Value: 10000,
	})

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "only the subscribed webhook fires")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "deposit_paid", payload["event"])
	assert.Equal(t, "turbobet", payload["source"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestDispatchWildcardSubscription(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(discardLogger())
	webhooks := []domain.WebhookConfig{
		{ID: "all", URL: srv.URL, Enabled: true, Events: []string{"*"}},
	}

	d.Dispatch(context.Background(), webhooks, domain.TrackingEvent{Event: "game_launched"})
	d.Dispatch(context.Background(), webhooks, domain.TrackingEvent{Event: "user_login"})

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDispatchSurvivesFailingEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(discardLogger())
	webhooks := []domain.WebhookConfig{
		{ID: "down", URL: srv.URL, Enabled: true, Events: []string{"*"}},
		{ID: "gone", URL: "http://127.0.0.1:1", Enabled: true, Events: []string{"*"}},
	}

	// Must not panic or return an error path; delivery is best effort.
	d.Dispatch(context.Background(), webhooks, domain.TrackingEvent{Event: "deposit_paid"})
}
