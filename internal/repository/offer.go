package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/infra"
)

type offerRepo struct{}

// NewOfferRepository returns a pgx-backed OfferRepository.
func NewOfferRepository() OfferRepository {
	return &offerRepo{}
}

const offerColumns = `id, name, kind, percentage, fixed_amount, min_deposit, max_bonus,
	       rollover_multiplier, rtp_percentage, active, vip_level_required,
	       created_at, updated_at`

func (r *offerRepo) List(ctx context.Context, db DBTX) ([]domain.BonusOffer, error) {
	rows, err := db.Query(ctx, `
		SELECT `+offerColumns+`
		FROM bonuses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.BonusOffer
	for rows.Next() {
		offer, err := scanOfferRow(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

func (r *offerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.BonusOffer, error) {
	row := db.QueryRow(ctx, `
		SELECT `+offerColumns+`
		FROM bonuses WHERE id = $1`, id)
	return scanOffer(row)
}

func (r *offerRepo) FindBestForDeposit(ctx context.Context, db DBTX, kind domain.OfferKind, amount int64) (*domain.BonusOffer, error) {
	row := db.QueryRow(ctx, `
		SELECT `+offerColumns+`
		FROM bonuses
		WHERE kind = $1 AND active = true AND min_deposit <= $2
		ORDER BY min_deposit DESC
		LIMIT 1`, string(kind), infra.Int64ToNumeric(amount))
	return scanOffer(row)
}

func (r *offerRepo) Create(ctx context.Context, db DBTX, offer *domain.BonusOffer) (*domain.BonusOffer, error) {
	var maxBonus *pgtype.Numeric
	if offer.MaxBonus != nil {
		n := infra.Int64ToNumeric(*offer.MaxBonus)
		maxBonus = &n
	}
	row := db.QueryRow(ctx, `
		INSERT INTO bonuses
		  (name, kind, percentage, fixed_amount, min_deposit, max_bonus,
		   rollover_multiplier, rtp_percentage, active, vip_level_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+offerColumns,
		offer.Name, string(offer.Kind), offer.Percentage,
		infra.Int64ToNumeric(offer.Fixed), infra.Int64ToNumeric(offer.MinDeposit),
		maxBonus, offer.RolloverMultiplier, offer.RtpPercentage,
		offer.Active, offer.VipLevelRequired,
	)
	return scanOffer(row)
}

// Update builds a dynamic SET clause from the non-nil patch fields.
func (r *offerRepo) Update(ctx context.Context, db DBTX, id uuid.UUID, patch domain.BonusOfferPatch) (*domain.BonusOffer, error) {
	sets := []string{}
	args := []interface{}{id}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Kind != nil {
		add("kind", string(*patch.Kind))
	}
	if patch.Percentage != nil {
		add("percentage", *patch.Percentage)
	}
	if patch.Fixed != nil {
		add("fixed_amount", infra.Int64ToNumeric(*patch.Fixed))
	}
	if patch.MinDeposit != nil {
		add("min_deposit", infra.Int64ToNumeric(*patch.MinDeposit))
	}
	if patch.MaxBonus.Set {
		if patch.MaxBonus.Valid {
			add("max_bonus", infra.Int64ToNumeric(patch.MaxBonus.Value))
		} else {
			add("max_bonus", nil)
		}
	}
	if patch.RolloverMultiplier != nil {
		add("rollover_multiplier", *patch.RolloverMultiplier)
	}
	if patch.RtpPercentage != nil {
		add("rtp_percentage", *patch.RtpPercentage)
	}
	if patch.Active != nil {
		add("active", *patch.Active)
	}
	if patch.VipLevelRequired.Set {
		if patch.VipLevelRequired.Valid {
			add("vip_level_required", patch.VipLevelRequired.Value)
		} else {
			add("vip_level_required", nil)
		}
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, db, id)
	}

	query := fmt.Sprintf(`
		UPDATE bonuses SET %s, updated_at = now()
		WHERE id = $1
		RETURNING %s`, strings.Join(sets, ", "), offerColumns)
	return scanOffer(db.QueryRow(ctx, query, args...))
}

func (r *offerRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM bonuses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("offer", id.String())
	}
	return nil
}

func scanOffer(row pgx.Row) (*domain.BonusOffer, error) {
	return scanOfferFrom(row.Scan)
}

func scanOfferRow(rows pgx.Rows) (*domain.BonusOffer, error) {
	return scanOfferFrom(rows.Scan)
}

func scanOfferFrom(scan func(dest ...interface{}) error) (*domain.BonusOffer, error) {
	var o domain.BonusOffer
	var kind string
	var fixedNum, minNum pgtype.Numeric
	var maxNum *pgtype.Numeric
	err := scan(
		&o.ID, &o.Name, &kind, &o.Percentage, &fixedNum, &minNum, &maxNum,
		&o.RolloverMultiplier, &o.RtpPercentage, &o.Active, &o.VipLevelRequired,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan offer: %w", err)
	}
	o.Kind = domain.OfferKind(kind)

	var convErr error
	o.Fixed, convErr = infra.NumericToInt64(fixedNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert fixed_amount: %w", convErr)
	}
	o.MinDeposit, convErr = infra.NumericToInt64(minNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert min_deposit: %w", convErr)
	}
	if maxNum != nil {
		max, convErr := infra.NumericToInt64(*maxNum)
		if convErr != nil {
			return nil, fmt.Errorf("convert max_bonus: %w", convErr)
		}
		o.MaxBonus = &max
	}

	return &o, nil
}
