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

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const txColumns = `id, user_id, amount, status, payment_method, request_number, created_at, updated_at`

func (r *transactionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByRequestNumber(ctx context.Context, db DBTX, requestNumber string) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM transactions WHERE request_number = $1`, requestNumber)
	return scanTransaction(row)
}

func (r *transactionRepo) FindLatestByUserAmount(ctx context.Context, db DBTX, userID uuid.UUID, amount int64) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE user_id = $1 AND amount = $2
		ORDER BY created_at DESC
		LIMIT 1`, userID, infra.Int64ToNumeric(amount))
	return scanTransaction(row)
}

func (r *transactionRepo) CountSettledDeposits(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND amount > 0 AND status = 'PAID_OUT' AND payment_method = $2`,
		userID, domain.PaymentMethodPix).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count settled deposits: %w", err)
	}
	return count, nil
}

func (r *transactionRepo) DailyDepositSum(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error) {
	settled := make([]string, len(domain.SettledStatuses))
	for i, s := range domain.SettledStatuses {
		settled[i] = string(s)
	}

	var sumNum pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1
		  AND amount > 0
		  AND payment_method = $2
		  AND status = ANY($3)
		  AND created_at >= date_trunc('day', now())`,
		userID, domain.PaymentMethodPix, settled).Scan(&sumNum)
	if err != nil {
		return 0, fmt.Errorf("sum daily deposits: %w", err)
	}
	sum, err := infra.NumericToInt64(sumNum)
	if err != nil {
		return 0, fmt.Errorf("convert daily deposit sum: %w", err)
	}
	return sum, nil
}

func (r *transactionRepo) Create(ctx context.Context, db DBTX, tx *domain.Transaction) error {
	_, err := db.Exec(ctx, `
		INSERT INTO transactions (id, user_id, amount, status, payment_method, request_number)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.UserID, infra.Int64ToNumeric(tx.Amount),
		string(tx.Status), tx.PaymentMethod, tx.RequestNumber,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.TransactionStatus) error {
	tag, err := db.Exec(ctx, `
		UPDATE transactions SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("transaction", id.String())
	}
	return nil
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionFrom(rows.Scan)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	return scanTransactionFrom(row.Scan)
}

func scanTransactionFrom(scan func(dest ...interface{}) error) (*domain.Transaction, error) {
	var t domain.Transaction
	var status string
	var amountNum pgtype.Numeric
	err := scan(&t.ID, &t.UserID, &amountNum, &status, &t.PaymentMethod,
		&t.RequestNumber, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Status = domain.TransactionStatus(status)

	t.Amount, err = infra.NumericToInt64(amountNum)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	return &t, nil
}
