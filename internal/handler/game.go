package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/service"
)

// GameHandler serves the public game catalog and launch endpoint.
type GameHandler struct {
	catalogSvc *service.CatalogService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(catalogSvc *service.CatalogService) *GameHandler {
	return &GameHandler{catalogSvc: catalogSvc}
}

// ListProviders handles GET /providers.
func (h *GameHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.catalogSvc.ListProviders(r.Context(), true)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, providers)
}

// ListGames handles GET /games with optional provider_id, featured, search
// and limit query params.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	filter := domain.GameFilter{
		ActiveOnly: true,
		Search:     r.URL.Query().Get("search"),
	}
	if p := r.URL.Query().Get("provider_id"); p != "" {
		providerID, err := uuid.Parse(p)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid provider_id"))
			return
		}
		filter.ProviderID = &providerID
	}
	if r.URL.Query().Get("featured") == "true" {
		filter.FeaturedOnly = true
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			RespondError(w, domain.ErrValidation("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	games, err := h.catalogSvc.ListGames(r.Context(), filter)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, games)
}

// Launch handles POST /games/{id}/launch — returns the aggregator's play
// URL for the authenticated user.
func (h *GameHandler) Launch(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	result, err := h.catalogSvc.LaunchGame(r.Context(), userID, gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
