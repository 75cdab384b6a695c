package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/bonus"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/infra"
	"github.com/turbobet/platform/internal/policy"
	"github.com/turbobet/platform/internal/repository"
)

// PaymentService orchestrates deposits, the gateway callback and
// withdrawal requests.
type PaymentService struct {
	pool    *pgxpool.Pool
	txRepo  repository.TransactionRepository
	users   repository.UserRepository
	outbox  repository.OutboxRepository
	engine  *bonus.Engine
	tracker *Tracker
	limits  policy.DepositLimitPolicy
	logger  *slog.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(
	pool *pgxpool.Pool,
	txRepo repository.TransactionRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	engine *bonus.Engine,
	tracker *Tracker,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		pool:    pool,
		txRepo:  txRepo,
		users:   users,
		outbox:  outbox,
		engine:  engine,
		tracker: tracker,
		limits:  policy.DefaultDepositLimits(),
		logger:  logger,
	}
}

// InitiateDeposit records a pending PIX deposit and returns the row the
// gateway will reference by request number.
func (s *PaymentService) InitiateDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	// Responsible gaming: check deposit limits before creating the charge.
	daily, err := s.txRepo.DailyDepositSum(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("sum daily deposits", err)
	}
	if eval := policy.EvaluateDeposit(s.limits, amount, daily); !eval.Allowed {
		return nil, domain.ErrDepositLimit(fmt.Sprintf(
			"deposit exceeds %s limit of %s", eval.BreachedLimit, infra.FormatBRL(eval.LimitValue)))
	}

	requestNumber := fmt.Sprintf("dep_%s", strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
	txn := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        amount,
		Status:        domain.TxStatusPending,
		PaymentMethod: domain.PaymentMethodPix,
		RequestNumber: &requestNumber,
	}
	if err := s.txRepo.Create(ctx, s.pool, txn); err != nil {
		return nil, domain.ErrInternal("create transaction", err)
	}

	s.tracker.Emit(ctx, domain.TrackingEvent{
		Event:  domain.EventDepositCreated,
		UserID: userID.String(),
		Value:  amount,
	})
	return txn, nil
}

// HandleGatewayCallback settles the transaction the gateway references and,
// for a successful deposit, credits the balance and runs the bonus engine in
// the same database transaction.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, requestNumber string, status domain.TransactionStatus) error {
	txn, err := s.txRepo.FindByRequestNumber(ctx, s.pool, requestNumber)
	if err != nil {
		return domain.ErrInternal("find transaction", err)
	}
	if txn == nil {
		s.logger.Warn("gateway callback for unknown transaction", "request_number", requestNumber)
		return domain.ErrNotFound("transaction", requestNumber)
	}

	// Idempotency: the gateway retries callbacks.
	if txn.Status == status || txn.Status == domain.TxStatusPaidOut {
		return nil
	}

	if !txn.IsDeposit() {
		return s.settleWithdrawal(ctx, txn, status)
	}

	switch status {
	case domain.TxStatusPaid, domain.TxStatusPaidOut:
		return s.settleDeposit(ctx, txn)
	case domain.TxStatusFailed, domain.TxStatusCanceled:
		if err := s.txRepo.UpdateStatus(ctx, s.pool, txn.ID, status); err != nil {
			return domain.ErrInternal("update transaction status", err)
		}
		s.tracker.Emit(ctx, domain.TrackingEvent{
			Event:  domain.EventDepositFailed,
			UserID: txn.UserID.String(),
			Value:  txn.Amount,
		})
		return nil
	default:
		return domain.ErrValidation(fmt.Sprintf("unknown gateway status %q", status))
	}
}

func (s *PaymentService) settleDeposit(ctx context.Context, txn *domain.Transaction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	// The engine runs while this deposit is still PENDING: its first-deposit
	// test counts prior PAID_OUT rows and must not see the one being settled.
	grant, err := s.engine.ApplyBonusToDeposit(ctx, tx, txn.UserID, &txn.ID, txn.Amount)
	if err != nil {
		return err
	}

	if err := s.txRepo.UpdateStatus(ctx, tx, txn.ID, domain.TxStatusPaidOut); err != nil {
		return domain.ErrInternal("update transaction status", err)
	}

	if _, err := s.users.CreditBalance(ctx, tx, txn.UserID, txn.Amount); err != nil {
		return domain.ErrInternal("credit deposit", err)
	}

	txn.Status = domain.TxStatusPaidOut
	if err := s.outbox.Insert(ctx, tx, domain.NewDepositSettledEvent(txn)); err != nil {
		return domain.ErrInternal("outbox deposit settled", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.tracker.Emit(ctx, domain.TrackingEvent{
		Event:  domain.EventDepositPaid,
		UserID: txn.UserID.String(),
		Value:  txn.Amount,
	})

	if grant != nil {
		s.logger.Info("deposit settled with bonus",
			"transaction_id", txn.ID, "user_id", txn.UserID,
			"amount", txn.Amount, "bonus", grant.BonusAmount,
			"rollover_required", grant.RolloverRequired)
	} else {
		s.logger.Info("deposit settled",
			"transaction_id", txn.ID, "user_id", txn.UserID, "amount", txn.Amount)
	}
	return nil
}

// settleWithdrawal finalizes a withdrawal row. The balance was already
// debited when the request was accepted, so success only flips the status;
// a failed payout refunds the reservation.
func (s *PaymentService) settleWithdrawal(ctx context.Context, txn *domain.Transaction, status domain.TransactionStatus) error {
	switch status {
	case domain.TxStatusPaid, domain.TxStatusPaidOut:
		if err := s.txRepo.UpdateStatus(ctx, s.pool, txn.ID, domain.TxStatusPaidOut); err != nil {
			return domain.ErrInternal("update withdrawal status", err)
		}
		s.tracker.Emit(ctx, domain.TrackingEvent{
			Event:  domain.EventWithdrawalPaid,
			UserID: txn.UserID.String(),
			Value:  -txn.Amount,
		})
		s.logger.Info("withdrawal paid out",
			"transaction_id", txn.ID, "user_id", txn.UserID, "amount", -txn.Amount)
		return nil
	case domain.TxStatusFailed, domain.TxStatusCanceled:
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return domain.ErrInternal("begin tx", err)
		}
		defer tx.Rollback(ctx)

		if err := s.txRepo.UpdateStatus(ctx, tx, txn.ID, status); err != nil {
			return domain.ErrInternal("update withdrawal status", err)
		}
		// Return the reserved amount.
		if _, err := s.users.CreditBalance(ctx, tx, txn.UserID, -txn.Amount); err != nil {
			return domain.ErrInternal("refund withdrawal", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return domain.ErrInternal("commit tx", err)
		}
		s.logger.Info("withdrawal refunded",
			"transaction_id", txn.ID, "user_id", txn.UserID, "amount", -txn.Amount)
		return nil
	default:
		return domain.ErrValidation(fmt.Sprintf("unknown gateway status %q", status))
	}
}

// RequestWithdrawal runs the rollover gate, then reserves the balance and
// records a pending withdrawal in one transaction.
func (s *PaymentService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	check, err := s.engine.CanUserWithdraw(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}
	if !check.Can {
		return nil, domain.ErrRolloverIncomplete(check.Reason)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user, err := s.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, domain.ErrInternal("lock user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	if user.Balance < amount {
		return nil, domain.ErrInsufficientBalance()
	}

	if _, err := s.users.CreditBalance(ctx, tx, userID, -amount); err != nil {
		return nil, domain.ErrInternal("reserve balance", err)
	}

	requestNumber := fmt.Sprintf("wd_%s", strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
	txn := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        -amount,
		Status:        domain.TxStatusPending,
		PaymentMethod: domain.PaymentMethodPix,
		RequestNumber: &requestNumber,
	}
	if err := s.txRepo.Create(ctx, tx, txn); err != nil {
		return nil, domain.ErrInternal("create withdrawal", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.tracker.Emit(ctx, domain.TrackingEvent{
		Event:  domain.EventWithdrawalCreated,
		UserID: userID.String(),
		Value:  amount,
	})
	return txn, nil
}

// ListTransactions returns a user's transaction history, newest first.
func (s *PaymentService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListByUser(ctx, s.pool, userID, 50)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	return txns, nil
}
