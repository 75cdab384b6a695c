package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/handler"
	"github.com/turbobet/platform/internal/service"
)

// CatalogAdminHandler manages the provider/game catalog.
type CatalogAdminHandler struct {
	catalogSvc *service.CatalogService
}

// NewCatalogAdminHandler creates a new CatalogAdminHandler.
func NewCatalogAdminHandler(catalogSvc *service.CatalogService) *CatalogAdminHandler {
	return &CatalogAdminHandler{catalogSvc: catalogSvc}
}

// ListProviders handles GET /admin/providers — includes disabled entries.
func (h *CatalogAdminHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.catalogSvc.ListProviders(r.Context(), false)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, providers)
}

// ListGames handles GET /admin/games — includes disabled entries.
func (h *CatalogAdminHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalogSvc.ListGames(r.Context(), domain.GameFilter{})
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, games)
}

type activeRequest struct {
	Active bool `json:"active"`
}

// SetProviderActive handles PATCH /admin/providers/{id}/active.
func (h *CatalogAdminHandler) SetProviderActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid provider id"))
		return
	}

	var input activeRequest
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	if err := h.catalogSvc.SetProviderActive(r.Context(), id, input.Active); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"active": input.Active})
}

// SetGameActive handles PATCH /admin/games/{id}/active.
func (h *CatalogAdminHandler) SetGameActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid game id"))
		return
	}

	var input activeRequest
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	if err := h.catalogSvc.SetGameActive(r.Context(), id, input.Active); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"active": input.Active})
}

// SyncCatalog handles POST /admin/catalog/sync — pulls providers and games
// from the aggregator.
func (h *CatalogAdminHandler) SyncCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalogSvc.SyncCatalog(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}
