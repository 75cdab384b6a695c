package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/infra"
)

type wagerRepo struct{}

// NewWagerRepository returns a pgx-backed WagerRepository.
func NewWagerRepository() WagerRepository {
	return &wagerRepo{}
}

func (r *wagerRepo) Insert(ctx context.Context, db DBTX, wager *domain.WagerRecord) (*domain.WagerRecord, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO user_bets (user_id, user_bonus_id, game_id, bet_amount, win_amount, net_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, user_bonus_id, game_id, bet_amount, win_amount, net_amount, created_at`,
		wager.UserID, wager.GrantID, wager.GameID,
		infra.Int64ToNumeric(wager.BetAmount), infra.Int64ToNumeric(wager.WinAmount),
		infra.Int64ToNumeric(wager.NetAmount),
	)
	return scanWager(row)
}

func (r *wagerRepo) SumNetByGrant(ctx context.Context, db DBTX, grantID uuid.UUID) (int64, error) {
	var totalNum pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(net_amount), 0) FROM user_bets WHERE user_bonus_id = $1`,
		grantID).Scan(&totalNum)
	if err != nil {
		return 0, fmt.Errorf("sum wagers: %w", err)
	}
	total, err := infra.NumericToInt64(totalNum)
	if err != nil {
		return 0, fmt.Errorf("convert wager sum: %w", err)
	}
	return total, nil
}

func scanWager(row pgx.Row) (*domain.WagerRecord, error) {
	var w domain.WagerRecord
	var betNum, winNum, netNum pgtype.Numeric
	err := row.Scan(&w.ID, &w.UserID, &w.GrantID, &w.GameID, &betNum, &winNum, &netNum, &w.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wager: %w", err)
	}

	var convErr error
	w.BetAmount, convErr = infra.NumericToInt64(betNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert bet_amount: %w", convErr)
	}
	w.WinAmount, convErr = infra.NumericToInt64(winNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert win_amount: %w", convErr)
	}
	w.NetAmount, convErr = infra.NumericToInt64(netNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert net_amount: %w", convErr)
	}

	return &w, nil
}
