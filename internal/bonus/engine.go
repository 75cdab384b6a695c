package bonus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/repository"
)

// Engine implements the bonus/rollover ledger:
//  1. ApplyBonusToDeposit — grant a bonus when a deposit settles
//  2. RecordBet — attribute wagering volume and advance rollover
//  3. CanUserWithdraw — gate withdrawals on outstanding rollover
//
// Multi-write operations run inside the caller's pgx transaction with the
// user row locked, so a failure rolls back the grant and the balance credit
// together.
type Engine struct {
	users        repository.UserRepository
	offers       repository.OfferRepository
	grants       repository.GrantRepository
	wagers       repository.WagerRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a bonus engine with the given repositories.
func NewEngine(
	users repository.UserRepository,
	offers repository.OfferRepository,
	grants repository.GrantRepository,
	wagers repository.WagerRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		users:        users,
		offers:       offers,
		grants:       grants,
		wagers:       wagers,
		transactions: transactions,
		outbox:       outbox,
	}
}

// lockUser acquires a row-level lock and returns the user.
// Must be called within a transaction.
func (e *Engine) lockUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.User, error) {
	user, err := e.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}
