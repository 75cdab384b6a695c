package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/turbobet/platform/internal/domain"
)

// WebhookDispatcher posts tracking events to configured marketing webhooks.
// Delivery is best effort: failures are logged, never propagated.
type WebhookDispatcher struct {
	logger *slog.Logger
	client *http.Client
}

// NewWebhookDispatcher creates a dispatcher with a 5s per-request timeout.
func NewWebhookDispatcher(logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		logger: logger,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	domain.TrackingEvent
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Dispatch sends the event to every webhook subscribed to it, in parallel.
// Returns once all deliveries finish or time out.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, webhooks []domain.WebhookConfig, event domain.TrackingEvent) {
	payload := webhookPayload{
		TrackingEvent: event,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Source:        "turbobet",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("marshal tracking event", "error", err, "event", event.Event)
		return
	}

	done := make(chan struct{})
	var sent int
	for _, hook := range webhooks {
		if !hook.WantsEvent(event.Event) {
			continue
		}
		sent++
		go func(hook domain.WebhookConfig) {
			defer func() { done <- struct{}{} }()
			d.deliver(ctx, hook, event.Event, body)
		}(hook)
	}
	for i := 0; i < sent; i++ {
		<-done
	}
}

func (d *WebhookDispatcher) deliver(ctx context.Context, hook domain.WebhookConfig, eventName string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("create webhook request", "error", err, "webhook", hook.ID)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("webhook delivery failed", "webhook", hook.ID, "event", eventName, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Warn("webhook returned non-2xx", "webhook", hook.ID, "event", eventName, "status", resp.StatusCode)
		return
	}
	d.logger.Info("tracking event delivered", "webhook", hook.ID, "event", eventName)
}
