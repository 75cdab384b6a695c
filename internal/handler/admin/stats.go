package admin

import (
	"net/http"

	"github.com/turbobet/platform/internal/handler"
	"github.com/turbobet/platform/internal/service"
)

// StatsAdminHandler serves the dashboard aggregates.
type StatsAdminHandler struct {
	statsSvc *service.StatsService
}

// NewStatsAdminHandler creates a new StatsAdminHandler.
func NewStatsAdminHandler(statsSvc *service.StatsService) *StatsAdminHandler {
	return &StatsAdminHandler{statsSvc: statsSvc}
}

// Dashboard handles GET /admin/stats/dashboard.
func (h *StatsAdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsSvc.Dashboard(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, stats)
}
