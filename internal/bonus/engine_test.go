package bonus

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/repository"
)

// --- in-memory fakes ---

type fakeUsers struct {
	users map[uuid.UUID]*domain.User
}

func (f *fakeUsers) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, _ repository.DBTX, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) Create(_ context.Context, _ repository.DBTX, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) CreditBalance(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int64) (*domain.User, error) {
	u := f.users[id]
	if u == nil {
		return nil, domain.ErrNotFound("user", id.String())
	}
	u.Balance += amount
	return u, nil
}

func (f *fakeUsers) AddTotalWagered(_ context.Context, _ pgx.Tx, id uuid.UUID, net int64) error {
	f.users[id].TotalWagered += net
	return nil
}

type fakeOffers struct {
	offers []domain.BonusOffer
}

func (f *fakeOffers) List(_ context.Context, _ repository.DBTX) ([]domain.BonusOffer, error) {
	return f.offers, nil
}

func (f *fakeOffers) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.BonusOffer, error) {
	for i := range f.offers {
		if f.offers[i].ID == id {
			return &f.offers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeOffers) FindBestForDeposit(_ context.Context, _ repository.DBTX, kind domain.OfferKind, amount int64) (*domain.BonusOffer, error) {
	var best *domain.BonusOffer
	for i := range f.offers {
		o := &f.offers[i]
		if o.Kind != kind || !o.Active || o.MinDeposit > amount {
			continue
		}
		if best == nil || o.MinDeposit > best.MinDeposit {
			best = o
		}
	}
	return best, nil
}

func (f *fakeOffers) Create(_ context.Context, _ repository.DBTX, offer *domain.BonusOffer) (*domain.BonusOffer, error) {
	offer.ID = uuid.New()
	f.offers = append(f.offers, *offer)
	return offer, nil
}

func (f *fakeOffers) Update(_ context.Context, _ repository.DBTX, id uuid.UUID, _ domain.BonusOfferPatch) (*domain.BonusOffer, error) {
	return f.FindByID(context.Background(), nil, id)
}

func (f *fakeOffers) Delete(_ context.Context, _ repository.DBTX, _ uuid.UUID) error {
	return nil
}

type fakeGrants struct {
	grants map[uuid.UUID]*domain.BonusGrant
}

func (f *fakeGrants) Insert(_ context.Context, _ repository.DBTX, grant *domain.BonusGrant) (*domain.BonusGrant, error) {
	g := *grant
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	f.grants[g.ID] = &g
	return &g, nil
}

func (f *fakeGrants) ListActiveByUser(_ context.Context, _ repository.DBTX, userID uuid.UUID) ([]domain.BonusGrant, error) {
	var out []domain.BonusGrant
	for _, g := range f.grants {
		if g.UserID == userID && g.Status == domain.GrantStatusActive {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeGrants) UpdateProgress(_ context.Context, _ repository.DBTX, grantID uuid.UUID, completed int64) (*domain.BonusGrant, error) {
	g := f.grants[grantID]
	if g == nil {
		return nil, domain.ErrNotFound("grant", grantID.String())
	}
	g.RolloverCompleted = completed
	if completed >= g.RolloverRequired {
		g.Status = domain.GrantStatusCompleted
	} else {
		g.Status = domain.GrantStatusActive
	}
	out := *g
	return &out, nil
}

func (f *fakeGrants) Cancel(_ context.Context, _ repository.DBTX, grantID uuid.UUID) error {
	f.grants[grantID].Status = domain.GrantStatusCancelled
	return nil
}

type fakeWagers struct {
	wagers []domain.WagerRecord
}

func (f *fakeWagers) Insert(_ context.Context, _ repository.DBTX, wager *domain.WagerRecord) (*domain.WagerRecord, error) {
	w := *wager
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	f.wagers = append(f.wagers, w)
	return &w, nil
}

func (f *fakeWagers) SumNetByGrant(_ context.Context, _ repository.DBTX, grantID uuid.UUID) (int64, error) {
	var total int64
	for i := range f.wagers {
		if f.wagers[i].GrantID == grantID {
			total += f.wagers[i].NetAmount
		}
	}
	return total, nil
}

type fakeTxs struct {
	settledDeposits int64
	latestByAmount  map[int64]*domain.Transaction
}

func (f *fakeTxs) FindByID(_ context.Context, _ repository.DBTX, _ uuid.UUID) (*domain.Transaction, error) {
	return nil, nil
}

func (f *fakeTxs) FindByRequestNumber(_ context.Context, _ repository.DBTX, _ string) (*domain.Transaction, error) {
	return nil, nil
}

func (f *fakeTxs) FindLatestByUserAmount(_ context.Context, _ repository.DBTX, _ uuid.UUID, amount int64) (*domain.Transaction, error) {
	if f.latestByAmount == nil {
		return nil, nil
	}
	return f.latestByAmount[amount], nil
}

func (f *fakeTxs) CountSettledDeposits(_ context.Context, _ repository.DBTX, _ uuid.UUID) (int64, error) {
	return f.settledDeposits, nil
}

func (f *fakeTxs) DailyDepositSum(_ context.Context, _ repository.DBTX, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeTxs) Create(_ context.Context, _ repository.DBTX, _ *domain.Transaction) error {
	return nil
}

func (f *fakeTxs) UpdateStatus(_ context.Context, _ repository.DBTX, _ uuid.UUID, _ domain.TransactionStatus) error {
	return nil
}

func (f *fakeTxs) ListByUser(_ context.Context, _ repository.DBTX, _ uuid.UUID, _ int) ([]domain.Transaction, error) {
	return nil, nil
}

type fakeOutbox struct {
	drafts []domain.OutboxDraft
}

func (f *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	f.drafts = append(f.drafts, draft)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, _ repository.DBTX, _ int) ([]domain.OutboxDraft, []int64, error) {
	return nil, nil, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, _ repository.DBTX, _ []int64) error {
	return nil
}

// --- fixture ---

type fixture struct {
	engine *Engine
	users  *fakeUsers
	offers *fakeOffers
	grants *fakeGrants
	wagers *fakeWagers
	txs    *fakeTxs
	outbox *fakeOutbox
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  &fakeUsers{users: map[uuid.UUID]*domain.User{}},
		offers: &fakeOffers{},
		grants: &fakeGrants{grants: map[uuid.UUID]*domain.BonusGrant{}},
		wagers: &fakeWagers{},
		txs:    &fakeTxs{},
		outbox: &fakeOutbox{},
		userID: uuid.New(),
	}
	f.users.users[f.userID] = &domain.User{ID: f.userID, Username: "player1", Currency: "BRL"}
	f.engine = NewEngine(f.users, f.offers, f.grants, f.wagers, f.txs, f.outbox)
	return f
}

func (f *fixture) addOffer(kind domain.OfferKind, pct float64, fixed, minDeposit int64, maxBonus *int64, multiplier float64) domain.BonusOffer {
	offer := domain.BonusOffer{
		ID:                 uuid.New(),
		Name:               "test offer",
		Kind:               kind,
		Percentage:         pct,
		Fixed:              fixed,
		MinDeposit:         minDeposit,
		MaxBonus:           maxBonus,
		RolloverMultiplier: multiplier,
		RtpPercentage:      96.0,
		Active:             true,
	}
	f.offers.offers = append(f.offers.offers, offer)
	return offer
}

func (f *fixture) addActiveGrant(required int64, createdAt time.Time) *domain.BonusGrant {
	g := &domain.BonusGrant{
		ID:               uuid.New(),
		UserID:           f.userID,
		OfferID:          uuid.New(),
		RolloverRequired: required,
		Status:           domain.GrantStatusActive,
		CreatedAt:        createdAt,
	}
	f.grants.grants[g.ID] = g
	return g
}

func i64(v int64) *int64 { return &v }

// --- ApplyBonusToDeposit ---

func TestApplyBonusToDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("no qualifying offer is a no-op", func(t *testing.T) {
		f := newFixture(t)
		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		assert.Nil(t, grant)
		assert.Equal(t, int64(0), f.users.users[f.userID].Balance)
		assert.Empty(t, f.grants.grants)
	})

	t.Run("first deposit 100 with 100% offer capped at 150", func(t *testing.T) {
		f := newFixture(t)
		f.addOffer(domain.OfferFirstDeposit, 100, 0, 0, i64(15000), 2)

		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, int64(10000), grant.BonusAmount, "bonus not clamped")
		assert.Equal(t, int64(40000), grant.RolloverRequired, "(100+100)x2")
		assert.Equal(t, domain.GrantStatusActive, grant.Status)
		assert.Equal(t, int64(0), grant.RolloverCompleted)
		assert.Equal(t, int64(10000), f.users.users[f.userID].Balance)
	})

	t.Run("deposit 200 clamps bonus to the cap", func(t *testing.T) {
		f := newFixture(t)
		f.addOffer(domain.OfferFirstDeposit, 100, 0, 0, i64(15000), 2)

		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 20000)
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, int64(15000), grant.BonusAmount)
		assert.Equal(t, int64(70000), grant.RolloverRequired, "(200+150)x2")
	})

	t.Run("prior settled deposit selects general deposit offers", func(t *testing.T) {
		f := newFixture(t)
		f.txs.settledDeposits = 3
		f.addOffer(domain.OfferFirstDeposit, 100, 0, 0, nil, 2)
		general := f.addOffer(domain.OfferDeposit, 50, 0, 0, nil, 1)

		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, general.ID, grant.OfferID)
		assert.Equal(t, int64(5000), grant.BonusAmount)
	})

	t.Run("highest qualifying min_deposit tier wins", func(t *testing.T) {
		f := newFixture(t)
		f.addOffer(domain.OfferFirstDeposit, 10, 0, 0, nil, 1)
		tier := f.addOffer(domain.OfferFirstDeposit, 50, 0, 5000, nil, 1)
		f.addOffer(domain.OfferFirstDeposit, 100, 0, 50000, nil, 1)

		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, tier.ID, grant.OfferID)
	})

	t.Run("fixed amount adds on top of percentage", func(t *testing.T) {
		f := newFixture(t)
		f.addOffer(domain.OfferFirstDeposit, 50, 2000, 0, nil, 1.5)

		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, int64(7000), grant.BonusAmount, "50% of 100 + 20 fixed")
		assert.Equal(t, int64(25500), grant.RolloverRequired, "(100+70)x1.5")
	})

	t.Run("missing transaction id resolves by amount", func(t *testing.T) {
		f := newFixture(t)
		f.addOffer(domain.OfferFirstDeposit, 100, 0, 0, nil, 2)
		matched := &domain.Transaction{ID: uuid.New(), UserID: f.userID, Amount: 10000}
		f.txs.latestByAmount = map[int64]*domain.Transaction{10000: matched}

		grant, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		require.NotNil(t, grant)
		require.NotNil(t, grant.TransactionID)
		assert.Equal(t, matched.ID, *grant.TransactionID)
	})

	t.Run("grant emits an outbox event", func(t *testing.T) {
		f := newFixture(t)
		f.addOffer(domain.OfferFirstDeposit, 100, 0, 0, nil, 2)

		_, err := f.engine.ApplyBonusToDeposit(ctx, nil, f.userID, nil, 10000)
		require.NoError(t, err)
		require.Len(t, f.outbox.drafts, 1)
		assert.Equal(t, domain.EventTypeBonusGranted, f.outbox.drafts[0].EventType)
	})
}

// --- RecordBet ---

func TestRecordBet(t *testing.T) {
	ctx := context.Background()

	t.Run("no active grants is a no-op", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.RecordBet(ctx, nil, f.userID, 5000, 0, nil)
		require.NoError(t, err)
		assert.Empty(t, f.wagers.wagers)
		assert.Equal(t, int64(0), f.users.users[f.userID].TotalWagered)
	})

	t.Run("sequence of bets completes the grant", func(t *testing.T) {
		f := newFixture(t)
		g := f.addActiveGrant(40000, time.Now())

		// Net amounts 150, 100, 200 -> cumulative 450 >= 400.
		for _, bet := range []int64{15000, 10000, 20000} {
			require.NoError(t, f.engine.RecordBet(ctx, nil, f.userID, bet, 0, nil))
		}

		final := f.grants.grants[g.ID]
		assert.Equal(t, domain.GrantStatusCompleted, final.Status)
		assert.Equal(t, int64(45000), final.RolloverCompleted)
		assert.Equal(t, int64(45000), f.users.users[f.userID].TotalWagered)
	})

	t.Run("win reduces net contribution and can be negative", func(t *testing.T) {
		f := newFixture(t)
		g := f.addActiveGrant(40000, time.Now())

		require.NoError(t, f.engine.RecordBet(ctx, nil, f.userID, 10000, 30000, nil))

		final := f.grants.grants[g.ID]
		assert.Equal(t, int64(-20000), final.RolloverCompleted)
		assert.Equal(t, domain.GrantStatusActive, final.Status)
		assert.Equal(t, int64(-20000), f.users.users[f.userID].TotalWagered)
	})

	t.Run("strict FIFO attribution to the oldest grant", func(t *testing.T) {
		f := newFixture(t)
		older := f.addActiveGrant(1000, time.Now().Add(-time.Hour))
		newer := f.addActiveGrant(40000, time.Now())

		// Bet far exceeds the older grant's remaining requirement; no split.
		require.NoError(t, f.engine.RecordBet(ctx, nil, f.userID, 50000, 0, nil))

		require.Len(t, f.wagers.wagers, 1)
		assert.Equal(t, older.ID, f.wagers.wagers[0].GrantID)
		assert.Equal(t, int64(0), f.grants.grants[newer.ID].RolloverCompleted)
		assert.Equal(t, domain.GrantStatusCompleted, f.grants.grants[older.ID].Status)
	})

	t.Run("once the oldest completes the next grant becomes the target", func(t *testing.T) {
		f := newFixture(t)
		older := f.addActiveGrant(1000, time.Now().Add(-time.Hour))
		newer := f.addActiveGrant(40000, time.Now())

		require.NoError(t, f.engine.RecordBet(ctx, nil, f.userID, 5000, 0, nil))
		require.NoError(t, f.engine.RecordBet(ctx, nil, f.userID, 7000, 0, nil))

		require.Len(t, f.wagers.wagers, 2)
		assert.Equal(t, older.ID, f.wagers.wagers[0].GrantID)
		assert.Equal(t, newer.ID, f.wagers.wagers[1].GrantID)
		assert.Equal(t, int64(7000), f.grants.grants[newer.ID].RolloverCompleted)
	})

	t.Run("completion emits an outbox event", func(t *testing.T) {
		f := newFixture(t)
		f.addActiveGrant(1000, time.Now())

		require.NoError(t, f.engine.RecordBet(ctx, nil, f.userID, 2000, 0, nil))
		require.Len(t, f.outbox.drafts, 1)
		assert.Equal(t, domain.EventTypeBonusCompleted, f.outbox.drafts[0].EventType)
	})

	t.Run("rejects non-positive bet amounts", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.RecordBet(ctx, nil, f.userID, 0, 0, nil)
		require.Error(t, err)
	})
}

// --- CanUserWithdraw ---

func TestCanUserWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("no active grants allows withdrawal", func(t *testing.T) {
		f := newFixture(t)
		check, err := f.engine.CanUserWithdraw(ctx, nil, f.userID)
		require.NoError(t, err)
		assert.True(t, check.Can)
		assert.Empty(t, check.Reason)
	})

	t.Run("outstanding rollover denies with formatted amount", func(t *testing.T) {
		f := newFixture(t)
		g := f.addActiveGrant(40000, time.Now())
		g.RolloverCompleted = 9000

		check, err := f.engine.CanUserWithdraw(ctx, nil, f.userID)
		require.NoError(t, err)
		assert.False(t, check.Can)
		assert.Contains(t, check.Reason, "R$ 310.00")
	})

	t.Run("numerically satisfied but still active allows withdrawal", func(t *testing.T) {
		f := newFixture(t)
		g := f.addActiveGrant(40000, time.Now())
		g.RolloverCompleted = 40000

		check, err := f.engine.CanUserWithdraw(ctx, nil, f.userID)
		require.NoError(t, err)
		assert.True(t, check.Can)
	})

	t.Run("outstanding sums across incomplete grants", func(t *testing.T) {
		f := newFixture(t)
		a := f.addActiveGrant(20000, time.Now().Add(-time.Hour))
		a.RolloverCompleted = 5000
		b := f.addActiveGrant(30000, time.Now())
		b.RolloverCompleted = 14000

		check, err := f.engine.CanUserWithdraw(ctx, nil, f.userID)
		require.NoError(t, err)
		assert.False(t, check.Can)
		assert.Contains(t, check.Reason, "R$ 310.00", "150+160 outstanding")
	})
}
