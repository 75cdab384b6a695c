package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus mirrors the payment gateway's lifecycle states.
type TransactionStatus string

const (
	TxStatusPending  TransactionStatus = "PENDING"
	TxStatusPaid     TransactionStatus = "PAID"
	TxStatusPaidOut  TransactionStatus = "PAID_OUT"
	TxStatusFailed   TransactionStatus = "FAILED"
	TxStatusCanceled TransactionStatus = "CANCELED"
)

// PaymentMethodPix is the only gateway method currently in use.
const PaymentMethodPix = "PIX"

// SettledStatuses are the statuses counted as money actually moved.
var SettledStatuses = []TransactionStatus{TxStatusPaid, TxStatusPaidOut}

// Transaction is a transactions row. Amount is integer centavos; deposits
// are positive, withdrawals negative.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Amount        int64             `json:"amount"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	RequestNumber *string           `json:"request_number,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsDeposit reports whether the row records money in.
func (t *Transaction) IsDeposit() bool { return t.Amount > 0 }
