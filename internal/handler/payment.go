package handler

import (
	"net/http"

	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/service"
)

// PaymentHandler serves deposit, withdrawal and transaction endpoints.
type PaymentHandler struct {
	paymentSvc *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

// Deposit handles POST /payments/deposits — records a pending PIX deposit.
func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input depositRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	txn, err := h.paymentSvc.InitiateDeposit(r.Context(), userID, input.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, txn)
}

type withdrawRequest struct {
	Amount int64 `json:"amount"`
}

// Withdraw handles POST /payments/withdrawals — runs the rollover gate and
// reserves the balance.
func (h *PaymentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input withdrawRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	txn, err := h.paymentSvc.RequestWithdrawal(r.Context(), userID, input.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, txn)
}

// ListTransactions handles GET /payments/transactions.
func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	txns, err := h.paymentSvc.ListTransactions(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, txns)
}

type gatewayCallback struct {
	RequestNumber string `json:"requestNumber"`
	Status        string `json:"status"`
}

// GatewayCallback handles POST /webhooks/payment — the payment gateway's
// settlement notification. Public endpoint; the gateway retries on non-2xx.
func (h *PaymentHandler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	var input gatewayCallback
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}
	if input.RequestNumber == "" {
		RespondError(w, domain.ErrValidation("requestNumber is required"))
		return
	}

	err := h.paymentSvc.HandleGatewayCallback(r.Context(), input.RequestNumber, domain.TransactionStatus(input.Status))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
