package bonus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/turbobet/platform/internal/domain"
)

// ApplyBonusToDeposit selects the best qualifying offer for a settled
// deposit, credits the bonus to the user's balance and writes the grant
// ledger row. Returns nil when no offer applies; no side effects in that
// case.
//
// Eligibility: a user with no prior settled PIX deposit gets first_deposit
// offers, everyone else deposit offers. Among qualifying offers the one
// with the highest min_deposit wins (the most specific tier).
func (e *Engine) ApplyBonusToDeposit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, transactionID *uuid.UUID, depositAmount int64) (*domain.BonusGrant, error) {
	if err := domain.ValidatePositiveAmount(depositAmount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	if _, err := e.lockUser(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("apply bonus: %w", err)
	}

	settled, err := e.transactions.CountSettledDeposits(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("apply bonus: %w", err)
	}

	kind := domain.OfferDeposit
	if settled == 0 {
		kind = domain.OfferFirstDeposit
	}

	offer, err := e.offers.FindBestForDeposit(ctx, tx, kind, depositAmount)
	if err != nil {
		return nil, fmt.Errorf("apply bonus: %w", err)
	}
	if offer == nil {
		return nil, nil
	}

	bonusAmount := ComputeBonusAmount(offer, depositAmount)
	rolloverRequired := ComputeRolloverRequired(depositAmount, bonusAmount, offer.RolloverMultiplier)

	// Resolve the originating transaction when the caller has none, by the
	// user's most recent transaction matching the deposit amount.
	txRef := transactionID
	if txRef == nil {
		matched, err := e.transactions.FindLatestByUserAmount(ctx, tx, userID, depositAmount)
		if err != nil {
			return nil, fmt.Errorf("apply bonus: resolve transaction: %w", err)
		}
		if matched != nil {
			txRef = &matched.ID
		}
	}

	grant, err := e.grants.Insert(ctx, tx, &domain.BonusGrant{
		UserID:            userID,
		OfferID:           offer.ID,
		TransactionID:     txRef,
		BonusAmount:       bonusAmount,
		DepositAmount:     depositAmount,
		RolloverRequired:  rolloverRequired,
		RolloverCompleted: 0,
		Status:            domain.GrantStatusActive,
		RtpPercentage:     offer.RtpPercentage,
	})
	if err != nil {
		return nil, fmt.Errorf("apply bonus: insert grant: %w", err)
	}

	if _, err := e.users.CreditBalance(ctx, tx, userID, bonusAmount); err != nil {
		return nil, fmt.Errorf("apply bonus: credit balance: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewBonusGrantedEvent(grant)); err != nil {
		return nil, fmt.Errorf("apply bonus: outbox: %w", err)
	}

	return grant, nil
}
