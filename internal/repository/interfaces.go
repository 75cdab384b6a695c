package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/turbobet/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByID returns a user by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// FindByUsername returns a user by login name, with password hash.
	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// CreditBalance adds amount centavos to the user's balance using
	// server-side arithmetic and returns the updated row.
	CreditBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (*domain.User, error)

	// AddTotalWagered adds net wagering volume to the lifetime counter.
	AddTotalWagered(ctx context.Context, tx pgx.Tx, id uuid.UUID, net int64) error
}

// OfferRepository provides access to the bonuses catalog.
type OfferRepository interface {
	List(ctx context.Context, db DBTX) ([]domain.BonusOffer, error)
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.BonusOffer, error)

	// FindBestForDeposit returns the active offer of the given kind with the
	// highest min_deposit still at or below amount, or nil when none qualify.
	FindBestForDeposit(ctx context.Context, db DBTX, kind domain.OfferKind, amount int64) (*domain.BonusOffer, error)

	Create(ctx context.Context, db DBTX, offer *domain.BonusOffer) (*domain.BonusOffer, error)

	// Update applies a partial patch; only non-nil fields change.
	Update(ctx context.Context, db DBTX, id uuid.UUID, patch domain.BonusOfferPatch) (*domain.BonusOffer, error)

	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
}

// GrantRepository provides access to user_bonuses ledger rows.
type GrantRepository interface {
	// Insert writes a new grant row and returns it with generated fields.
	Insert(ctx context.Context, db DBTX, grant *domain.BonusGrant) (*domain.BonusGrant, error)

	// ListActiveByUser returns active grants oldest-first (FIFO order).
	ListActiveByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.BonusGrant, error)

	// UpdateProgress sets rollover_completed and flips status to completed
	// when the total meets the requirement.
	UpdateProgress(ctx context.Context, db DBTX, grantID uuid.UUID, completed int64) (*domain.BonusGrant, error)

	// Cancel marks a grant cancelled (administrative action).
	Cancel(ctx context.Context, db DBTX, grantID uuid.UUID) error
}

// WagerRepository provides access to user_bets rows.
type WagerRepository interface {
	// Insert writes a wager record.
	Insert(ctx context.Context, db DBTX, wager *domain.WagerRecord) (*domain.WagerRecord, error)

	// SumNetByGrant returns SUM(net_amount) across all wagers attributed to
	// the grant, 0 when none exist.
	SumNetByGrant(ctx context.Context, db DBTX, grantID uuid.UUID) (int64, error)
}

// TransactionRepository provides access to transactions (deposits and
// withdrawals as recorded from the payment gateway).
type TransactionRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error)

	// FindByRequestNumber returns the gateway-referenced transaction.
	FindByRequestNumber(ctx context.Context, db DBTX, requestNumber string) (*domain.Transaction, error)

	// FindLatestByUserAmount returns the most recent transaction for the
	// user matching the amount, used when a grant lacks an explicit reference.
	FindLatestByUserAmount(ctx context.Context, db DBTX, userID uuid.UUID, amount int64) (*domain.Transaction, error)

	// CountSettledDeposits counts settled PIX deposits for the first-deposit test.
	CountSettledDeposits(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error)

	// DailyDepositSum totals today's PIX deposits, settled or awaiting payout.
	DailyDepositSum(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error)

	Create(ctx context.Context, db DBTX, tx *domain.Transaction) error

	// UpdateStatus transitions a transaction's gateway status.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.TransactionStatus) error

	// ListByUser returns a user's transactions newest-first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error)
}

// ProviderRepository provides access to the game providers catalog.
type ProviderRepository interface {
	List(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Provider, error)
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Provider, error)

	// Upsert inserts or refreshes a provider keyed by external_id.
	Upsert(ctx context.Context, db DBTX, p *domain.Provider) (*domain.Provider, error)

	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error
}

// GameRepository provides access to the games catalog.
type GameRepository interface {
	List(ctx context.Context, db DBTX, filter domain.GameFilter) ([]domain.Game, error)
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)

	// FindByExternalID resolves an aggregator game code.
	FindByExternalID(ctx context.Context, db DBTX, externalID string) (*domain.Game, error)

	// Upsert inserts or refreshes a game keyed by (provider_id, external_id).
	Upsert(ctx context.Context, db DBTX, g *domain.Game) (*domain.Game, error)

	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error
}

// StatsRepository runs the admin dashboard aggregates.
type StatsRepository interface {
	Dashboard(ctx context.Context, db DBTX) (*domain.DashboardStats, error)
}

// SettingsRepository provides access to the flattened settings table and
// the typed webhook configuration derived from it.
type SettingsRepository interface {
	// Get returns a setting value, "" when absent.
	Get(ctx context.Context, db DBTX, key string) (string, error)

	// Set upserts a setting row.
	Set(ctx context.Context, db DBTX, key, value string) error

	// ListWebhooks parses webhook.<id>.{url,enabled,events} rows into typed
	// configs, returning only enabled entries with a URL.
	ListWebhooks(ctx context.Context, db DBTX) ([]domain.WebhookConfig, error)

	// SaveWebhook writes the dotted-key rows for one webhook config.
	SaveWebhook(ctx context.Context, db DBTX, cfg domain.WebhookConfig) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns pending events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, []int64, error)

	// MarkPublished removes delivered events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
