package handler

import (
	"net/http"

	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/service"
)

// BonusHandler serves the user-facing bonus endpoints.
type BonusHandler struct {
	bonusSvc *service.BonusService
}

// NewBonusHandler creates a new BonusHandler.
func NewBonusHandler(bonusSvc *service.BonusService) *BonusHandler {
	return &BonusHandler{bonusSvc: bonusSvc}
}

// ListOffers handles GET /bonuses — the public catalog, active offers only.
func (h *BonusHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.bonusSvc.ListOffers(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	active := make([]domain.BonusOffer, 0, len(offers))
	for _, o := range offers {
		if o.Active {
			active = append(active, o)
		}
	}
	RespondJSON(w, http.StatusOK, active)
}

// MyBonuses handles GET /bonuses/me — the user's active grants with
// rollover progress.
func (h *BonusHandler) MyBonuses(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	grants, err := h.bonusSvc.MyGrants(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, grants)
}

// WithdrawalCheck handles GET /withdrawals/check — reports whether the
// rollover gate allows a withdrawal and why not.
func (h *BonusHandler) WithdrawalCheck(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	check, err := h.bonusSvc.CheckWithdrawal(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, check)
}
