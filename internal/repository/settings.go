package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/turbobet/platform/internal/domain"
)

type settingsRepo struct{}

// NewSettingsRepository returns a pgx-backed SettingsRepository.
func NewSettingsRepository() SettingsRepository {
	return &settingsRepo{}
}

func (r *settingsRepo) Get(ctx context.Context, db DBTX, key string) (string, error) {
	var value string
	err := db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *settingsRepo) Set(ctx context.Context, db DBTX, key, value string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepo) ListWebhooks(ctx context.Context, db DBTX) ([]domain.WebhookConfig, error) {
	rows, err := db.Query(ctx, `
		SELECT key, value FROM settings WHERE key LIKE 'webhook.%'`)
	if err != nil {
		return nil, fmt.Errorf("query webhook settings: %w", err)
	}
	defer rows.Close()

	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return parseWebhookSettings(kv), nil
}

func (r *settingsRepo) SaveWebhook(ctx context.Context, db DBTX, cfg domain.WebhookConfig) error {
	if cfg.ID == "" {
		return domain.ErrValidation("webhook id is required")
	}
	events, err := json.Marshal(cfg.Events)
	if err != nil {
		return fmt.Errorf("marshal webhook events: %w", err)
	}
	enabled := "false"
	if cfg.Enabled {
		enabled = "true"
	}
	prefix := "webhook." + cfg.ID + "."
	for key, value := range map[string]string{
		prefix + "url":     cfg.URL,
		prefix + "enabled": enabled,
		prefix + "events":  string(events),
	} {
		if err := r.Set(ctx, db, key, value); err != nil {
			return err
		}
	}
	return nil
}

// parseWebhookSettings turns webhook.<id>.{url,enabled,events} rows into
// typed configs. Only enabled entries with a URL are returned, sorted by id
// for stable output.
func parseWebhookSettings(kv map[string]string) []domain.WebhookConfig {
	byID := map[string]*domain.WebhookConfig{}
	for key, value := range kv {
		rest, ok := strings.CutPrefix(key, "webhook.")
		if !ok {
			continue
		}
		id, field, ok := strings.Cut(rest, ".")
		if !ok || id == "" {
			continue
		}

		cfg := byID[id]
		if cfg == nil {
			cfg = &domain.WebhookConfig{ID: id}
			byID[id] = cfg
		}

		switch field {
		case "url":
			cfg.URL = value
		case "enabled":
			cfg.Enabled = value == "true" || value == "1"
		case "events":
			if err := json.Unmarshal([]byte(value), &cfg.Events); err != nil {
				cfg.Events = nil
			}
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var configs []domain.WebhookConfig
	for _, id := range ids {
		cfg := byID[id]
		if cfg.Enabled && cfg.URL != "" {
			configs = append(configs, *cfg)
		}
	}
	return configs
}
