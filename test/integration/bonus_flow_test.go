//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/test/integration/testutil"
)

func i64(v int64) *int64 { return &v }

func TestRegister_ReturnsTokenAndZeroBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("newplayer", "securepass123")

	require.NotEmpty(t, token)
	testutil.AssertBalance(t, env, userID, 0, 0)

	resp := env.AuthGET("/users/me", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var me struct {
		Username string `json:"username"`
		Currency string `json:"currency"`
	}
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, "newplayer", me.Username)
	assert.Equal(t, "BRL", me.Currency)
}

func TestDeposit_FirstDepositGrantsBonus(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedOffer(domain.OfferFirstDeposit, 100, 0, 0, i64(15000), 2)
	token, userID := env.RegisterUser("ftdplayer", "securepass123")

	env.DepositAndSettle(token, 10000)

	// Deposit credited, plus the 100% bonus of R$ 100.00 on top.
	testutil.AssertBalance(t, env, userID, 20000, 0)

	resp := env.AuthGET("/bonuses/me", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var grants []struct {
		BonusAmount      int64  `json:"bonus_amount"`
		DepositAmount    int64  `json:"deposit_amount"`
		RolloverRequired int64  `json:"rollover_required"`
		Status           string `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &grants)
	require.Len(t, grants, 1)
	assert.Equal(t, int64(10000), grants[0].BonusAmount)
	assert.Equal(t, int64(10000), grants[0].DepositAmount)
	assert.Equal(t, int64(40000), grants[0].RolloverRequired)
	assert.Equal(t, "active", grants[0].Status)

	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, userID, "bet.bonus.granted"))
}

func TestDeposit_OfferKindTracksDepositCount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedOffer(domain.OfferFirstDeposit, 100, 0, 0, nil, 2)
	env.SeedOffer(domain.OfferDeposit, 50, 0, 0, nil, 2)
	token, userID := env.RegisterUser("repeatplayer", "securepass123")

	// The deposit being settled must not count toward its own
	// first-deposit eligibility check.
	env.DepositAndSettle(token, 10000)
	env.DepositAndSettle(token, 10000)

	kinds := testutil.GrantOfferKinds(t, env, userID)
	require.Equal(t, []string{"first_deposit", "deposit"}, kinds)

	resp := env.AuthGET("/bonuses/me", token)
	var grants []struct {
		BonusAmount int64 `json:"bonus_amount"`
	}
	testutil.DecodeJSON(t, resp, &grants)
	require.Len(t, grants, 2)
	assert.ElementsMatch(t, []int64{10000, 5000},
		[]int64{grants[0].BonusAmount, grants[1].BonusAmount})
}

func TestDeposit_BonusClampedToMax(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedOffer(domain.OfferFirstDeposit, 100, 0, 0, i64(15000), 2)
	token, userID := env.RegisterUser("clampplayer", "securepass123")

	env.DepositAndSettle(token, 20000)

	resp := env.AuthGET("/bonuses/me", token)
	var grants []struct {
		BonusAmount      int64 `json:"bonus_amount"`
		RolloverRequired int64 `json:"rollover_required"`
	}
	testutil.DecodeJSON(t, resp, &grants)
	require.Len(t, grants, 1)
	assert.Equal(t, int64(15000), grants[0].BonusAmount)
	assert.Equal(t, int64(70000), grants[0].RolloverRequired)

	// Deposit plus the clamped bonus.
	testutil.AssertBalance(t, env, userID, 35000, 0)
}

func TestDeposit_NoOfferNoGrant(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("nooffer", "securepass123")

	env.DepositAndSettle(token, 10000)

	testutil.AssertBalance(t, env, userID, 10000, 0)

	resp := env.AuthGET("/bonuses/me", token)
	var grants []struct{}
	testutil.DecodeJSON(t, resp, &grants)
	assert.Empty(t, grants)
}

func TestGatewayCallback_Idempotent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("idemplayer", "securepass123")

	reqNum := env.Deposit(token, 5000)
	env.SettleDeposit(reqNum)
	env.SettleDeposit(reqNum)

	// Credited exactly once despite the retry.
	testutil.AssertBalance(t, env, userID, 5000, 0)
}

func TestWithdraw_BlockedUntilRolloverComplete(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedOffer(domain.OfferFirstDeposit, 100, 0, 0, i64(15000), 2)
	token, userID := env.RegisterUser("rollplayer", "securepass123")

	env.DepositAndSettle(token, 10000)

	// Rollover required is 40000; nothing wagered yet.
	resp := env.AuthPOST("/payments/withdrawals", map[string]int64{"amount": 5000}, token)
	testutil.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	testutil.AssertErrorCode(t, resp, "ROLLOVER_INCOMPLETE")

	check := env.AuthGET("/withdrawals/check", token)
	var verdict struct {
		Can    bool   `json:"can"`
		Reason string `json:"reason"`
	}
	testutil.DecodeJSON(t, check, &verdict)
	assert.False(t, verdict.Can)
	assert.Contains(t, verdict.Reason, "R$ 400.00")

	// Fund the balance, then wager through the aggregator until the
	// requirement is met. The extra deposit grants nothing: the only offer
	// is first-deposit and one settled deposit already exists.
	env.DepositAndSettle(token, 50000)
	env.SeedGame("test-slot-1")
	for _, bet := range []int64{15000, 10000, 20000} {
		round := env.PlayRound(userID, bet, 0)
		testutil.AssertStatus(t, round, http.StatusOK)
		round.Body.Close()
	}

	assert.Equal(t, "completed", testutil.GrantStatus(t, env, userID))
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, userID, "bet.bonus.completed"))

	ok := env.AuthPOST("/payments/withdrawals", map[string]int64{"amount": 5000}, token)
	testutil.AssertStatus(t, ok, http.StatusCreated)
	ok.Body.Close()
}

func TestDeposit_DailyLimitCountsSettledDeposits(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("limitplayer", "securepass123")

	// Two settled R$ 5.000 deposits exhaust the R$ 10.000 daily cap.
	env.DepositAndSettle(token, 500_000)
	env.DepositAndSettle(token, 500_000)

	resp := env.AuthPOST("/payments/deposits", map[string]int64{"amount": 100_000}, token)
	testutil.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	testutil.AssertErrorCode(t, resp, "DEPOSIT_LIMIT")
}

func TestAdmin_PatchClearsNullableFields(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken()

	created := env.AuthPOST("/admin/bonuses", map[string]interface{}{
		"name":               "Capped reload",
		"kind":               "deposit",
		"percentage":         50,
		"max_bonus":          15000,
		"vip_level_required": 2,
	}, admin)
	testutil.AssertStatus(t, created, http.StatusCreated)

	var offer struct {
		ID               string `json:"id"`
		MaxBonus         *int64 `json:"max_bonus"`
		VipLevelRequired *int   `json:"vip_level_required"`
	}
	testutil.DecodeJSON(t, created, &offer)
	require.NotNil(t, offer.MaxBonus)
	require.NotNil(t, offer.VipLevelRequired)

	// Explicit nulls clear the caps; untouched fields keep their values.
	patched := env.AuthPATCH("/admin/bonuses/"+offer.ID, map[string]interface{}{
		"max_bonus":          nil,
		"vip_level_required": nil,
	}, admin)
	testutil.AssertStatus(t, patched, http.StatusOK)

	var after struct {
		Percentage       float64 `json:"percentage"`
		MaxBonus         *int64  `json:"max_bonus"`
		VipLevelRequired *int    `json:"vip_level_required"`
	}
	testutil.DecodeJSON(t, patched, &after)
	assert.Nil(t, after.MaxBonus)
	assert.Nil(t, after.VipLevelRequired)
	assert.Equal(t, 50.0, after.Percentage)
}

func TestWithdrawalCallback_PaysOutAndRefunds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("cashoutplayer", "securepass123")
	env.DepositAndSettle(token, 10000)

	requestWithdrawal := func(amount int64) string {
		resp := env.AuthPOST("/payments/withdrawals", map[string]int64{"amount": amount}, token)
		testutil.AssertStatus(t, resp, http.StatusCreated)
		var wd struct {
			RequestNumber *string `json:"request_number"`
		}
		testutil.DecodeJSON(t, resp, &wd)
		require.NotNil(t, wd.RequestNumber)
		return *wd.RequestNumber
	}
	callback := func(reqNum, status string) {
		resp := env.POST("/webhooks/payment", map[string]string{
			"requestNumber": reqNum,
			"status":        status,
		}, "")
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	// Successful payout keeps the balance debited.
	first := requestWithdrawal(3000)
	testutil.AssertBalance(t, env, userID, 7000, 0)
	callback(first, "PAID_OUT")
	testutil.AssertBalance(t, env, userID, 7000, 0)

	// A failed payout refunds the reservation.
	second := requestWithdrawal(2000)
	testutil.AssertBalance(t, env, userID, 5000, 0)
	callback(second, "FAILED")
	testutil.AssertBalance(t, env, userID, 7000, 0)
}

func TestGameRound_RejectsInsufficientBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, userID := env.RegisterUser("brokeplayer", "securepass123")

	resp := env.PlayRound(userID, 1000, 0)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_BALANCE")
}

func TestAdmin_OfferCRUDRequiresAdminRealm(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("plainuser", "securepass123")

	denied := env.AuthGET("/admin/bonuses", token)
	testutil.AssertStatus(t, denied, http.StatusUnauthorized)
	denied.Body.Close()

	admin := env.AdminToken()
	created := env.AuthPOST("/admin/bonuses", map[string]interface{}{
		"name":                "Weekend reload",
		"kind":                "deposit",
		"percentage":          50,
		"min_deposit":         5000,
		"rollover_multiplier": 3,
		"active":              true,
	}, admin)
	testutil.AssertStatus(t, created, http.StatusCreated)
	created.Body.Close()

	// A minimal body gets the creation defaults filled in.
	minimal := env.AuthPOST("/admin/bonuses", map[string]interface{}{
		"name":       "Starter",
		"kind":       "first_deposit",
		"percentage": 100,
	}, admin)
	testutil.AssertStatus(t, minimal, http.StatusCreated)
	var offer struct {
		RolloverMultiplier float64 `json:"rollover_multiplier"`
		RtpPercentage      float64 `json:"rtp_percentage"`
		Active             bool    `json:"active"`
	}
	testutil.DecodeJSON(t, minimal, &offer)
	assert.Equal(t, 1.0, offer.RolloverMultiplier)
	assert.Equal(t, 96.0, offer.RtpPercentage)
	assert.True(t, offer.Active)

	listed := env.AuthGET("/admin/bonuses", admin)
	testutil.AssertStatus(t, listed, http.StatusOK)
	listed.Body.Close()
}
