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

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

const userColumns = `id, username, password_hash, phone, currency, is_admin, vip_level,
	       balance, total_wagered, created_at, updated_at`

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error) {
	row := db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *userRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row)
}

func (r *userRepo) Create(ctx context.Context, db DBTX, user *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, phone, currency, is_admin, vip_level, balance, total_wagered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.PasswordHash, user.Phone, user.Currency,
		user.IsAdmin, user.VipLevel,
		infra.Int64ToNumeric(user.Balance), infra.Int64ToNumeric(user.TotalWagered),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// CreditBalance uses server-side arithmetic so concurrent credits never
// clobber each other.
func (r *userRepo) CreditBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (*domain.User, error) {
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET balance = balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, infra.Int64ToNumeric(amount))
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", id.String())
	}
	return user, nil
}

func (r *userRepo) AddTotalWagered(ctx context.Context, tx pgx.Tx, id uuid.UUID, net int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE users SET total_wagered = total_wagered + $2, updated_at = now()
		WHERE id = $1`, id, infra.Int64ToNumeric(net))
	if err != nil {
		return fmt.Errorf("add total wagered: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var balNum, wagerNum pgtype.Numeric
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Phone, &u.Currency,
		&u.IsAdmin, &u.VipLevel, &balNum, &wagerNum, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	var convErr error
	u.Balance, convErr = infra.NumericToInt64(balNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance: %w", convErr)
	}
	u.TotalWagered, convErr = infra.NumericToInt64(wagerNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert total_wagered: %w", convErr)
	}

	return &u, nil
}
