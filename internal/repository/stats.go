package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/infra"
)

type statsRepo struct{}

// NewStatsRepository returns a pgx-backed StatsRepository.
func NewStatsRepository() StatsRepository {
	return &statsRepo{}
}

// Dashboard runs the admin dashboard aggregates in a handful of queries.
// "Today" is the server's current date in UTC.
func (r *statsRepo) Dashboard(ctx context.Context, db DBTX) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		DepositsByStatus: map[string]int64{},
	}

	var totalDeposits, depositsToday, totalWithdrawals pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT
		  COALESCE(SUM(amount) FILTER (WHERE status = 'PAID_OUT'), 0),
		  COALESCE(SUM(amount) FILTER (WHERE status = 'PAID_OUT' AND created_at >= date_trunc('day', now())), 0),
		  COALESCE(SUM(amount) FILTER (WHERE status = 'PAID' AND amount < 0), 0)
		FROM transactions`).
		Scan(&totalDeposits, &depositsToday, &totalWithdrawals)
	if err != nil {
		return nil, fmt.Errorf("transaction totals: %w", err)
	}
	if stats.TotalDeposits, err = infra.NumericToInt64(totalDeposits); err != nil {
		return nil, fmt.Errorf("convert total deposits: %w", err)
	}
	if stats.DepositsToday, err = infra.NumericToInt64(depositsToday); err != nil {
		return nil, fmt.Errorf("convert deposits today: %w", err)
	}
	if stats.TotalWithdrawals, err = infra.NumericToInt64(totalWithdrawals); err != nil {
		return nil, fmt.Errorf("convert total withdrawals: %w", err)
	}
	if stats.TotalWithdrawals < 0 {
		stats.TotalWithdrawals = -stats.TotalWithdrawals
	}

	err = db.QueryRow(ctx, `
		SELECT
		  COUNT(*),
		  COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
		  COUNT(*) FILTER (WHERE total_wagered > 0)
		FROM users`).
		Scan(&stats.TotalUsers, &stats.NewUsersToday, &stats.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("user totals: %w", err)
	}

	// First-time depositors today: users whose earliest settled deposit
	// landed today.
	err = db.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
		  SELECT user_id, MIN(created_at) AS first_deposit
		  FROM transactions
		  WHERE status = 'PAID_OUT'
		  GROUP BY user_id
		) f
		WHERE f.first_deposit >= date_trunc('day', now())`).
		Scan(&stats.FirstDepositsToday)
	if err != nil {
		return nil, fmt.Errorf("ftd today: %w", err)
	}

	var depositors int64
	err = db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM transactions WHERE status = 'PAID_OUT'`).
		Scan(&depositors)
	if err != nil {
		return nil, fmt.Errorf("depositor count: %w", err)
	}
	if depositors > 0 {
		stats.AverageDeposit = stats.TotalDeposits / depositors
	}
	if stats.TotalUsers > 0 {
		stats.ConversionRate = float64(depositors) / float64(stats.TotalUsers) * 100
	}

	rows, err := db.Query(ctx, `
		SELECT status, COALESCE(SUM(amount), 0) FROM transactions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("deposits by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var sum pgtype.Numeric
		if err := rows.Scan(&status, &sum); err != nil {
			return nil, fmt.Errorf("scan status sum: %w", err)
		}
		v, err := infra.NumericToInt64(sum)
		if err != nil {
			return nil, fmt.Errorf("convert status sum: %w", err)
		}
		stats.DepositsByStatus[status] = v
	}
	return stats, rows.Err()
}
