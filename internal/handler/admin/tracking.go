package admin

import (
	"net/http"

	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/handler"
	"github.com/turbobet/platform/internal/service"
)

// TrackingAdminHandler manages marketing webhook settings.
type TrackingAdminHandler struct {
	tracker *service.Tracker
}

// NewTrackingAdminHandler creates a new TrackingAdminHandler.
func NewTrackingAdminHandler(tracker *service.Tracker) *TrackingAdminHandler {
	return &TrackingAdminHandler{tracker: tracker}
}

// ListWebhooks handles GET /admin/tracking/webhooks.
func (h *TrackingAdminHandler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.tracker.ListWebhooks(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, webhooks)
}

// SaveWebhook handles PUT /admin/tracking/webhooks — upserts one webhook
// config.
func (h *TrackingAdminHandler) SaveWebhook(w http.ResponseWriter, r *http.Request) {
	var cfg domain.WebhookConfig
	if err := handler.DecodeJSON(r, &cfg); err != nil {
		handler.RespondBadBody(w)
		return
	}

	if err := h.tracker.SaveWebhook(r.Context(), cfg); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, cfg)
}
