package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/turbobet/platform/internal/domain"
)

type providerRepo struct{}

// NewProviderRepository returns a pgx-backed ProviderRepository.
func NewProviderRepository() ProviderRepository {
	return &providerRepo{}
}

const providerColumns = `id, external_id, name, image_url, active, sort_order, created_at`

func (r *providerRepo) List(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query providers: %w", err)
	}
	defer rows.Close()

	var providers []domain.Provider
	for rows.Next() {
		var p domain.Provider
		if err := rows.Scan(&p.ID, &p.ExternalID, &p.Name, &p.ImageURL, &p.Active, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (r *providerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Provider, error) {
	var p domain.Provider
	err := db.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id).
		Scan(&p.ID, &p.ExternalID, &p.Name, &p.ImageURL, &p.Active, &p.SortOrder, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find provider: %w", err)
	}
	return &p, nil
}

// Upsert inserts or refreshes a provider row keyed by the upstream external id.
// Used by catalog sync.
func (r *providerRepo) Upsert(ctx context.Context, db DBTX, p *domain.Provider) (*domain.Provider, error) {
	err := db.QueryRow(ctx, `
		INSERT INTO providers (external_id, name, image_url, active, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE
		SET name = EXCLUDED.name, image_url = EXCLUDED.image_url
		RETURNING `+providerColumns,
		p.ExternalID, p.Name, p.ImageURL, p.Active, p.SortOrder,
	).Scan(&p.ID, &p.ExternalID, &p.Name, &p.ImageURL, &p.Active, &p.SortOrder, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert provider: %w", err)
	}
	return p, nil
}

func (r *providerRepo) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error {
	tag, err := db.Exec(ctx, `UPDATE providers SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("provider", id.String())
	}
	return nil
}

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

const gameColumns = `id, provider_id, external_id, name, image_url, rtp, active, featured, created_at`

func (r *gameRepo) List(ctx context.Context, db DBTX, filter domain.GameFilter) ([]domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	args := []interface{}{}

	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		query += fmt.Sprintf(` AND provider_id = $%d`, len(args))
	}
	if filter.ActiveOnly {
		query += ` AND active = true`
	}
	if filter.FeaturedOnly {
		query += ` AND featured = true`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	query += ` ORDER BY featured DESC, name ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.ID, &g.ProviderID, &g.ExternalID, &g.Name, &g.ImageURL, &g.Rtp, &g.Active, &g.Featured, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	var g domain.Game
	err := db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id).
		Scan(&g.ID, &g.ProviderID, &g.ExternalID, &g.Name, &g.ImageURL, &g.Rtp, &g.Active, &g.Featured, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	return &g, nil
}

func (r *gameRepo) FindByExternalID(ctx context.Context, db DBTX, externalID string) (*domain.Game, error) {
	var g domain.Game
	err := db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE external_id = $1`, externalID).
		Scan(&g.ID, &g.ProviderID, &g.ExternalID, &g.Name, &g.ImageURL, &g.Rtp, &g.Active, &g.Featured, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find game by external id: %w", err)
	}
	return &g, nil
}

func (r *gameRepo) Upsert(ctx context.Context, db DBTX, g *domain.Game) (*domain.Game, error) {
	err := db.QueryRow(ctx, `
		INSERT INTO games (provider_id, external_id, name, image_url, rtp, active, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider_id, external_id) DO UPDATE
		SET name = EXCLUDED.name, image_url = EXCLUDED.image_url, rtp = EXCLUDED.rtp
		RETURNING `+gameColumns,
		g.ProviderID, g.ExternalID, g.Name, g.ImageURL, g.Rtp, g.Active, g.Featured,
	).Scan(&g.ID, &g.ProviderID, &g.ExternalID, &g.Name, &g.ImageURL, &g.Rtp, &g.Active, &g.Featured, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert game: %w", err)
	}
	return g, nil
}

func (r *gameRepo) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error {
	tag, err := db.Exec(ctx, `UPDATE games SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("game", id.String())
	}
	return nil
}
