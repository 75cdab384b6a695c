package service

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/repository"
)

// StatsService serves the admin dashboard aggregates.
type StatsService struct {
	pool  *pgxpool.Pool
	stats repository.StatsRepository
}

// NewStatsService creates a StatsService.
func NewStatsService(pool *pgxpool.Pool, stats repository.StatsRepository) *StatsService {
	return &StatsService{pool: pool, stats: stats}
}

// Dashboard returns the aggregated dashboard totals.
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.stats.Dashboard(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("dashboard stats", err)
	}
	return stats, nil
}
