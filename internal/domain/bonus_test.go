package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func f64p(f float64) *float64 { return &f }

func kindp(k OfferKind) *OfferKind { return &k }

func TestNewBonusOfferDefaults(t *testing.T) {
	t.Run("omitted fields get creation defaults", func(t *testing.T) {
		offer := NewBonusOffer(BonusOfferPatch{
			Name:       strp("Welcome"),
			Kind:       kindp(OfferFirstDeposit),
			Percentage: f64p(100),
		})

		assert.Equal(t, 1.0, offer.RolloverMultiplier)
		assert.Equal(t, 96.0, offer.RtpPercentage)
		assert.True(t, offer.Active)
		assert.Nil(t, offer.MaxBonus)
		assert.Nil(t, offer.VipLevelRequired)
		require.NoError(t, ValidateOffer(offer))
	})

	t.Run("defaults survive a JSON create body", func(t *testing.T) {
		var patch BonusOfferPatch
		require.NoError(t, json.Unmarshal(
			[]byte(`{"name":"Welcome","kind":"first_deposit","percentage":100}`), &patch))

		offer := NewBonusOffer(patch)
		assert.Equal(t, 1.0, offer.RolloverMultiplier)
		assert.Equal(t, 96.0, offer.RtpPercentage)
		assert.True(t, offer.Active)
		require.NoError(t, ValidateOffer(offer))
	})

	t.Run("explicit values override defaults", func(t *testing.T) {
		var patch BonusOfferPatch
		require.NoError(t, json.Unmarshal([]byte(
			`{"name":"Reload","kind":"deposit","percentage":50,
			  "rollover_multiplier":3,"rtp_percentage":92,"active":false,
			  "max_bonus":15000,"vip_level_required":2}`), &patch))

		offer := NewBonusOffer(patch)
		assert.Equal(t, 3.0, offer.RolloverMultiplier)
		assert.Equal(t, 92.0, offer.RtpPercentage)
		assert.False(t, offer.Active)
		require.NotNil(t, offer.MaxBonus)
		assert.Equal(t, int64(15000), *offer.MaxBonus)
		require.NotNil(t, offer.VipLevelRequired)
		assert.Equal(t, 2, *offer.VipLevelRequired)
	})
}

func TestBonusOfferPatchNullableFields(t *testing.T) {
	t.Run("absent field is not set", func(t *testing.T) {
		var patch BonusOfferPatch
		require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &patch))
		assert.False(t, patch.MaxBonus.Set)
		assert.False(t, patch.VipLevelRequired.Set)
	})

	t.Run("explicit null clears the column", func(t *testing.T) {
		var patch BonusOfferPatch
		require.NoError(t, json.Unmarshal(
			[]byte(`{"max_bonus":null,"vip_level_required":null}`), &patch))
		assert.True(t, patch.MaxBonus.Set)
		assert.False(t, patch.MaxBonus.Valid)
		assert.Nil(t, patch.MaxBonus.Ptr())
		assert.True(t, patch.VipLevelRequired.Set)
		assert.False(t, patch.VipLevelRequired.Valid)
	})

	t.Run("value round-trips", func(t *testing.T) {
		var patch BonusOfferPatch
		require.NoError(t, json.Unmarshal([]byte(`{"max_bonus":15000}`), &patch))
		assert.True(t, patch.MaxBonus.Set)
		assert.True(t, patch.MaxBonus.Valid)
		assert.Equal(t, int64(15000), patch.MaxBonus.Value)
		require.NotNil(t, patch.MaxBonus.Ptr())
		assert.Equal(t, int64(15000), *patch.MaxBonus.Ptr())
	})
}
