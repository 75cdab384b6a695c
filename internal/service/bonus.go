package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/bonus"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/repository"
)

// BonusService exposes the bonus catalog, a user's grants, and wager
// recording on top of the bonus engine.
type BonusService struct {
	pool   *pgxpool.Pool
	engine *bonus.Engine
	offers repository.OfferRepository
	grants repository.GrantRepository
	users  repository.UserRepository
	games  repository.GameRepository
}

// NewBonusService creates a BonusService.
func NewBonusService(
	pool *pgxpool.Pool,
	engine *bonus.Engine,
	offers repository.OfferRepository,
	grants repository.GrantRepository,
	users repository.UserRepository,
	games repository.GameRepository,
) *BonusService {
	return &BonusService{
		pool:   pool,
		engine: engine,
		offers: offers,
		grants: grants,
		users:  users,
		games:  games,
	}
}

// SettleGameRound applies a finished game round reported by the aggregator:
// the balance moves by win minus bet and the wager feeds the rollover
// ledger, all in one transaction.
func (s *BonusService) SettleGameRound(ctx context.Context, userID uuid.UUID, betAmount, winAmount int64, gameCode string) error {
	if err := domain.ValidatePositiveAmount(betAmount); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if winAmount < 0 {
		return domain.ErrValidation("win amount must not be negative")
	}

	var gameID *uuid.UUID
	if gameCode != "" {
		game, err := s.games.FindByExternalID(ctx, s.pool, gameCode)
		if err != nil {
			return domain.ErrInternal("find game", err)
		}
		if game != nil {
			gameID = &game.ID
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user, err := s.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return domain.ErrInternal("lock user", err)
	}
	if user == nil {
		return domain.ErrNotFound("user", userID.String())
	}
	if user.Balance < betAmount {
		return domain.ErrInsufficientBalance()
	}

	if _, err := s.users.CreditBalance(ctx, tx, userID, winAmount-betAmount); err != nil {
		return domain.ErrInternal("apply round balance", err)
	}

	if err := s.engine.RecordBet(ctx, tx, userID, betAmount, winAmount, gameID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// RecordWager records a settled bet against the user's active bonus grants
// in a single transaction.
func (s *BonusService) RecordWager(ctx context.Context, userID uuid.UUID, betAmount, winAmount int64, gameID *uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.engine.RecordBet(ctx, tx, userID, betAmount, winAmount, gameID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// CheckWithdrawal runs the rollover gate for the user.
func (s *BonusService) CheckWithdrawal(ctx context.Context, userID uuid.UUID) (domain.WithdrawalCheck, error) {
	return s.engine.CanUserWithdraw(ctx, s.pool, userID)
}

// MyGrants returns the user's active grants, oldest first.
func (s *BonusService) MyGrants(ctx context.Context, userID uuid.UUID) ([]domain.BonusGrant, error) {
	grants, err := s.grants.ListActiveByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("list grants", err)
	}
	return grants, nil
}

// CancelGrant cancels a grant administratively. Cancelled grants stop
// counting toward the withdrawal gate.
func (s *BonusService) CancelGrant(ctx context.Context, grantID uuid.UUID) error {
	if err := s.grants.Cancel(ctx, s.pool, grantID); err != nil {
		return err
	}
	return nil
}

// ListOffers returns the full bonus catalog.
func (s *BonusService) ListOffers(ctx context.Context) ([]domain.BonusOffer, error) {
	offers, err := s.offers.List(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list offers", err)
	}
	return offers, nil
}

// GetOffer returns one offer by id.
func (s *BonusService) GetOffer(ctx context.Context, id uuid.UUID) (*domain.BonusOffer, error) {
	offer, err := s.offers.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find offer", err)
	}
	if offer == nil {
		return nil, domain.ErrNotFound("offer", id.String())
	}
	return offer, nil
}

// CreateOffer validates and inserts a new catalog entry.
func (s *BonusService) CreateOffer(ctx context.Context, offer *domain.BonusOffer) (*domain.BonusOffer, error) {
	if err := domain.ValidateOffer(offer); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	created, err := s.offers.Create(ctx, s.pool, offer)
	if err != nil {
		return nil, domain.ErrInternal("create offer", err)
	}
	return created, nil
}

// UpdateOffer applies a partial patch; only supplied fields change.
func (s *BonusService) UpdateOffer(ctx context.Context, id uuid.UUID, patch domain.BonusOfferPatch) (*domain.BonusOffer, error) {
	if patch.Kind != nil && !domain.ValidOfferKind(*patch.Kind) {
		return nil, domain.ErrValidation("unknown offer kind")
	}
	updated, err := s.offers.Update(ctx, s.pool, id, patch)
	if err != nil {
		return nil, domain.ErrInternal("update offer", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("offer", id.String())
	}
	return updated, nil
}

// DeleteOffer removes an offer; grants referencing it go with it.
func (s *BonusService) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return s.offers.Delete(ctx, s.pool, id)
}
