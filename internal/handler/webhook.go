package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/service"
)

// WebhookHandler receives callbacks from the game aggregator.
type WebhookHandler struct {
	bonusSvc *service.BonusService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(bonusSvc *service.BonusService) *WebhookHandler {
	return &WebhookHandler{bonusSvc: bonusSvc}
}

type gameRoundCallback struct {
	UserCode  string `json:"user_code"`
	GameCode  string `json:"game_code"`
	BetAmount int64  `json:"bet_amount"`
	WinAmount int64  `json:"win_amount"`
}

// GameRound handles POST /webhooks/game — a settled bet reported by the
// aggregator. Moves the balance and feeds the rollover ledger.
func (h *WebhookHandler) GameRound(w http.ResponseWriter, r *http.Request) {
	var input gameRoundCallback
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	userID, err := uuid.Parse(input.UserCode)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid user_code"))
		return
	}

	if err := h.bonusSvc.SettleGameRound(r.Context(), userID, input.BetAmount, input.WinAmount, input.GameCode); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
