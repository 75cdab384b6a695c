package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/provider"
	"github.com/turbobet/platform/internal/repository"
)

// Tracker fans tracking events out to the configured marketing webhooks.
// Emission is fire and forget: it never blocks the calling request beyond
// loading the webhook configs, and delivery errors are only logged.
type Tracker struct {
	pool       *pgxpool.Pool
	settings   repository.SettingsRepository
	dispatcher *provider.WebhookDispatcher
	logger     *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker(
	pool *pgxpool.Pool,
	settings repository.SettingsRepository,
	dispatcher *provider.WebhookDispatcher,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		pool:       pool,
		settings:   settings,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Emit delivers the event to subscribed webhooks in the background. The
// delivery uses its own context so an already-finished request does not
// cancel it.
func (t *Tracker) Emit(ctx context.Context, event domain.TrackingEvent) {
	webhooks, err := t.settings.ListWebhooks(ctx, t.pool)
	if err != nil {
		t.logger.Error("load webhook configs", "error", err, "event", event.Event)
		return
	}
	if len(webhooks) == 0 {
		return
	}

	go func() {
		dispatchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		t.dispatcher.Dispatch(dispatchCtx, webhooks, event)
	}()
}

// ListWebhooks returns the configured webhooks for the admin settings page.
func (t *Tracker) ListWebhooks(ctx context.Context) ([]domain.WebhookConfig, error) {
	webhooks, err := t.settings.ListWebhooks(ctx, t.pool)
	if err != nil {
		return nil, domain.ErrInternal("list webhooks", err)
	}
	return webhooks, nil
}

// SaveWebhook validates and persists a webhook config.
func (t *Tracker) SaveWebhook(ctx context.Context, cfg domain.WebhookConfig) error {
	if cfg.ID == "" {
		return domain.ErrValidation("webhook id is required")
	}
	if cfg.Enabled && cfg.URL == "" {
		return domain.ErrValidation("enabled webhook requires a url")
	}
	if err := t.settings.SaveWebhook(ctx, t.pool, cfg); err != nil {
		return domain.ErrInternal("save webhook", err)
	}
	return nil
}
