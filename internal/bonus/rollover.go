package bonus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/turbobet/platform/internal/domain"
)

// RecordBet attributes a settled bet to the user's oldest active grant and
// advances rollover progress on every active grant. A user with no active
// grants produces no ledger writes.
//
// Attribution is strict FIFO: the whole wager goes to the oldest grant even
// when its remaining requirement is smaller than the bet; overflow never
// spills into newer grants.
func (e *Engine) RecordBet(ctx context.Context, tx pgx.Tx, userID uuid.UUID, betAmount, winAmount int64, gameID *uuid.UUID) error {
	if err := domain.ValidatePositiveAmount(betAmount); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if winAmount < 0 {
		return domain.ErrValidation("win amount must not be negative")
	}

	// Negative when the player wins more than wagered.
	netAmount := betAmount - winAmount

	if _, err := e.lockUser(ctx, tx, userID); err != nil {
		return fmt.Errorf("record bet: %w", err)
	}

	active, err := e.grants.ListActiveByUser(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("record bet: %w", err)
	}
	if len(active) == 0 {
		return nil
	}

	_, err = e.wagers.Insert(ctx, tx, &domain.WagerRecord{
		UserID:    userID,
		GrantID:   active[0].ID,
		GameID:    gameID,
		BetAmount: betAmount,
		WinAmount: winAmount,
		NetAmount: netAmount,
	})
	if err != nil {
		return fmt.Errorf("record bet: insert wager: %w", err)
	}


	// Recompute every active grant from the wager ledger, not just the one
	// just attributed, so an administratively adjusted ledger reconverges.
	for i := range active {
		total, err := e.wagers.SumNetByGrant(ctx, tx, active[i].ID)
		if err != nil {
			return fmt.Errorf("record bet: %w", err)
		}
		updated, err := e.grants.UpdateProgress(ctx, tx, active[i].ID, total)
		if err != nil {
			return fmt.Errorf("record bet: %w", err)
		}
		if updated.Status == domain.GrantStatusCompleted && active[i].Status != domain.GrantStatusCompleted {
			if err := e.outbox.Insert(ctx, tx, domain.NewBonusCompletedEvent(updated)); err != nil {
				return fmt.Errorf("record bet: outbox: %w", err)
			}
		}
	}

	if err := e.users.AddTotalWagered(ctx, tx, userID, netAmount); err != nil {
		return fmt.Errorf("record bet: %w", err)
	}

	return nil
}
