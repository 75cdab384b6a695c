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

type grantRepo struct{}

// NewGrantRepository returns a pgx-backed GrantRepository.
func NewGrantRepository() GrantRepository {
	return &grantRepo{}
}

const grantColumns = `id, user_id, bonus_id, transaction_id, bonus_amount, deposit_amount,
	       rollover_required, rollover_completed, status, rtp_percentage,
	       created_at, updated_at`

func (r *grantRepo) Insert(ctx context.Context, db DBTX, grant *domain.BonusGrant) (*domain.BonusGrant, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO user_bonuses
		  (user_id, bonus_id, transaction_id, bonus_amount, deposit_amount,
		   rollover_required, rollover_completed, status, rtp_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+grantColumns,
		grant.UserID, grant.OfferID, grant.TransactionID,
		infra.Int64ToNumeric(grant.BonusAmount), infra.Int64ToNumeric(grant.DepositAmount),
		infra.Int64ToNumeric(grant.RolloverRequired), infra.Int64ToNumeric(grant.RolloverCompleted),
		string(grant.Status), grant.RtpPercentage,
	)
	return scanGrant(row)
}

// ListActiveByUser orders by (created_at, id) ascending so the FIFO target
// is deterministic even when two grants share a timestamp.
func (r *grantRepo) ListActiveByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.BonusGrant, error) {
	rows, err := db.Query(ctx, `
		SELECT `+grantColumns+`
		FROM user_bonuses
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query active grants: %w", err)
	}
	defer rows.Close()

	var grants []domain.BonusGrant
	for rows.Next() {
		grant, err := scanGrantFrom(rows.Scan)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *grant)
	}
	return grants, rows.Err()
}

func (r *grantRepo) UpdateProgress(ctx context.Context, db DBTX, grantID uuid.UUID, completed int64) (*domain.BonusGrant, error) {
	row := db.QueryRow(ctx, `
		UPDATE user_bonuses
		SET rollover_completed = $2,
		    status = CASE WHEN $2 >= rollover_required THEN 'completed' ELSE 'active' END,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+grantColumns, grantID, infra.Int64ToNumeric(completed))
	grant, err := scanGrant(row)
	if err != nil {
		return nil, fmt.Errorf("update grant progress: %w", err)
	}
	if grant == nil {
		return nil, domain.ErrNotFound("grant", grantID.String())
	}
	return grant, nil
}

func (r *grantRepo) Cancel(ctx context.Context, db DBTX, grantID uuid.UUID) error {
	tag, err := db.Exec(ctx, `
		UPDATE user_bonuses SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'active')`, grantID)
	if err != nil {
		return fmt.Errorf("cancel grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("grant", grantID.String())
	}
	return nil
}

func scanGrant(row pgx.Row) (*domain.BonusGrant, error) {
	return scanGrantFrom(row.Scan)
}

func scanGrantFrom(scan func(dest ...interface{}) error) (*domain.BonusGrant, error) {
	var g domain.BonusGrant
	var status string
	var bonusNum, depositNum, requiredNum, completedNum pgtype.Numeric
	err := scan(
		&g.ID, &g.UserID, &g.OfferID, &g.TransactionID,
		&bonusNum, &depositNum, &requiredNum, &completedNum,
		&status, &g.RtpPercentage, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan grant: %w", err)
	}
	g.Status = domain.GrantStatus(status)

	for _, conv := range []struct {
		dst *int64
		src pgtype.Numeric
		col string
	}{
		{&g.BonusAmount, bonusNum, "bonus_amount"},
		{&g.DepositAmount, depositNum, "deposit_amount"},
		{&g.RolloverRequired, requiredNum, "rollover_required"},
		{&g.RolloverCompleted, completedNum, "rollover_completed"},
	} {
		v, convErr := infra.NumericToInt64(conv.src)
		if convErr != nil {
			return nil, fmt.Errorf("convert %s: %w", conv.col, convErr)
		}
		*conv.dst = v
	}

	return &g, nil
}
