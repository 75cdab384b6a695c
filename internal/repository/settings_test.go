package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookSettings(t *testing.T) {
	t.Run("builds configs from dotted keys", func(t *testing.T) {
		configs := parseWebhookSettings(map[string]string{
			"webhook.crm.url":     "https://crm.example.com/hook",
			"webhook.crm.enabled": "true",
			"webhook.crm.events":  `["user_registered","deposit_paid"]`,
		})
		require.Len(t, configs, 1)
		assert.Equal(t, "crm", configs[0].ID)
		assert.Equal(t, "https://crm.example.com/hook", configs[0].URL)
		assert.Equal(t, []string{"user_registered", "deposit_paid"}, configs[0].Events)
	})

	t.Run("skips disabled and urlless entries", func(t *testing.T) {
		configs := parseWebhookSettings(map[string]string{
			"webhook.off.url":        "https://off.example.com",
			"webhook.off.enabled":    "false",
			"webhook.broken.enabled": "true",
			"webhook.on.url":         "https://on.example.com",
			"webhook.on.enabled":     "1",
		})
		require.Len(t, configs, 1)
		assert.Equal(t, "on", configs[0].ID)
	})

	t.Run("sorted by id for stable output", func(t *testing.T) {
		configs := parseWebhookSettings(map[string]string{
			"webhook.zeta.url":      "https://z.example.com",
			"webhook.zeta.enabled":  "true",
			"webhook.alpha.url":     "https://a.example.com",
			"webhook.alpha.enabled": "true",
		})
		require.Len(t, configs, 2)
		assert.Equal(t, "alpha", configs[0].ID)
		assert.Equal(t, "zeta", configs[1].ID)
	})

	t.Run("tolerates malformed events and foreign keys", func(t *testing.T) {
		configs := parseWebhookSettings(map[string]string{
			"webhook.crm.url":     "https://crm.example.com",
			"webhook.crm.enabled": "true",
			"webhook.crm.events":  "not-json",
			"webhook.noid":        "value",
			"unrelated.key":       "value",
		})
		require.Len(t, configs, 1)
		assert.Nil(t, configs[0].Events)
	})
}
