package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/handler"
	"github.com/turbobet/platform/internal/service"
)

// BonusAdminHandler manages the bonus catalog and grants.
type BonusAdminHandler struct {
	bonusSvc *service.BonusService
}

// NewBonusAdminHandler creates a new BonusAdminHandler.
func NewBonusAdminHandler(bonusSvc *service.BonusService) *BonusAdminHandler {
	return &BonusAdminHandler{bonusSvc: bonusSvc}
}

// ListOffers handles GET /admin/bonuses — all offers including inactive.
func (h *BonusAdminHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.bonusSvc.ListOffers(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, offers)
}

// GetOffer handles GET /admin/bonuses/{id}.
func (h *BonusAdminHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid offer id"))
		return
	}

	offer, err := h.bonusSvc.GetOffer(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, offer)
}

// CreateOffer handles POST /admin/bonuses. Omitted fields get the catalog
// creation defaults (multiplier 1.0, RTP 96%, active).
func (h *BonusAdminHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var input domain.BonusOfferPatch
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondBadBody(w)
		return
	}

	created, err := h.bonusSvc.CreateOffer(r.Context(), domain.NewBonusOffer(input))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, created)
}

// UpdateOffer handles PATCH /admin/bonuses/{id} — partial update, only
// supplied fields change.
func (h *BonusAdminHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid offer id"))
		return
	}

	var patch domain.BonusOfferPatch
	if err := handler.DecodeJSON(r, &patch); err != nil {
		handler.RespondBadBody(w)
		return
	}

	updated, err := h.bonusSvc.UpdateOffer(r.Context(), id, patch)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, updated)
}

// DeleteOffer handles DELETE /admin/bonuses/{id}.
func (h *BonusAdminHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid offer id"))
		return
	}

	if err := h.bonusSvc.DeleteOffer(r.Context(), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// CancelGrant handles POST /admin/grants/{id}/cancel.
func (h *BonusAdminHandler) CancelGrant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid grant id"))
		return
	}

	if err := h.bonusSvc.CancelGrant(r.Context(), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
