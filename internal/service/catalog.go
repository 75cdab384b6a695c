package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/provider"
	"github.com/turbobet/platform/internal/repository"
)

// CatalogService manages the provider/game catalog and game launches.
type CatalogService struct {
	pool       *pgxpool.Pool
	providers  repository.ProviderRepository
	games      repository.GameRepository
	users      repository.UserRepository
	playfivers *provider.PlayFiversClient
	tracker    *Tracker
	logger     *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(
	pool *pgxpool.Pool,
	providers repository.ProviderRepository,
	games repository.GameRepository,
	users repository.UserRepository,
	playfivers *provider.PlayFiversClient,
	tracker *Tracker,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		pool:       pool,
		providers:  providers,
		games:      games,
		users:      users,
		playfivers: playfivers,
		tracker:    tracker,
		logger:     logger,
	}
}

// ListProviders returns catalog providers; activeOnly hides disabled ones.
func (s *CatalogService) ListProviders(ctx context.Context, activeOnly bool) ([]domain.Provider, error) {
	providers, err := s.providers.List(ctx, s.pool, activeOnly)
	if err != nil {
		return nil, domain.ErrInternal("list providers", err)
	}
	return providers, nil
}

// ListGames returns catalog games matching the filter.
func (s *CatalogService) ListGames(ctx context.Context, filter domain.GameFilter) ([]domain.Game, error) {
	games, err := s.games.List(ctx, s.pool, filter)
	if err != nil {
		return nil, domain.ErrInternal("list games", err)
	}
	return games, nil
}

// SetProviderActive toggles a provider's visibility.
func (s *CatalogService) SetProviderActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.providers.SetActive(ctx, s.pool, id, active)
}

// SetGameActive toggles a game's visibility.
func (s *CatalogService) SetGameActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.games.SetActive(ctx, s.pool, id, active)
}

// SyncResult summarizes a catalog sync run.
type SyncResult struct {
	Providers int `json:"providers"`
	Games     int `json:"games"`
}

// SyncCatalog pulls the provider and game catalogs from the aggregator and
// upserts them. New entries start inactive so an admin approves them before
// they appear publicly.
func (s *CatalogService) SyncCatalog(ctx context.Context) (*SyncResult, error) {
	upstream, err := s.playfivers.ListProviders(ctx)
	if err != nil {
		return nil, domain.ErrInternal("fetch providers", err)
	}

	result := &SyncResult{}
	for _, up := range upstream {
		p := &domain.Provider{
			ExternalID: up.ProviderID,
			Name:       up.Name,
		}
		if up.ImageURL != "" {
			p.ImageURL = &up.ImageURL
		}
		saved, err := s.providers.Upsert(ctx, s.pool, p)
		if err != nil {
			return nil, domain.ErrInternal("upsert provider", err)
		}
		result.Providers++

		games, err := s.playfivers.ListGames(ctx, up.ProviderID)
		if err != nil {
			return nil, domain.ErrInternal("fetch games", err)
		}
		for _, ug := range games {
			g := &domain.Game{
				ProviderID: saved.ID,
				ExternalID: ug.GameID,
				Name:       ug.Name,
				Rtp:        ug.Rtp,
			}
			if ug.ImageURL != "" {
				g.ImageURL = &ug.ImageURL
			}
			if _, err := s.games.Upsert(ctx, s.pool, g); err != nil {
				return nil, domain.ErrInternal("upsert game", err)
			}
			result.Games++
		}
	}

	s.logger.Info("catalog synced", "providers", result.Providers, "games", result.Games)
	return result, nil
}

// LaunchGame asks the aggregator for a playable URL for the given user.
func (s *CatalogService) LaunchGame(ctx context.Context, userID, gameID uuid.UUID) (*provider.LaunchResult, error) {
	game, err := s.games.FindByID(ctx, s.pool, gameID)
	if err != nil {
		return nil, domain.ErrInternal("find game", err)
	}
	if game == nil || !game.Active {
		return nil, domain.ErrNotFound("game", gameID.String())
	}

	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}

	result, err := s.playfivers.LaunchGame(ctx, user.ID.String(), game.ExternalID, user.Balance)
	if err != nil {
		return nil, domain.ErrInternal("launch game", err)
	}

	s.tracker.Emit(ctx, domain.TrackingEvent{
		Event:    domain.EventGameLaunched,
		UserID:   user.ID.String(),
		Username: user.Username,
		Metadata: map[string]interface{}{"game_id": game.ID.String(), "game_name": game.Name},
	})
	return result, nil
}
