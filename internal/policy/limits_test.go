package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateDeposit(t *testing.T) {
	limits := DefaultDepositLimits()

	t.Run("within limits", func(t *testing.T) {
		eval := EvaluateDeposit(limits, 10_000, 0)
		assert.True(t, eval.Allowed)
		assert.Empty(t, eval.BreachedLimit)
	})

	t.Run("single deposit over limit", func(t *testing.T) {
		eval := EvaluateDeposit(limits, 500_001, 0)
		assert.False(t, eval.Allowed)
		assert.Equal(t, "single_deposit", eval.BreachedLimit)
		assert.Equal(t, int64(500_000), eval.LimitValue)
	})

	t.Run("daily total over limit", func(t *testing.T) {
		eval := EvaluateDeposit(limits, 100_000, 950_000)
		assert.False(t, eval.Allowed)
		assert.Equal(t, "daily_deposit", eval.BreachedLimit)
	})

	t.Run("zero limits disable the check", func(t *testing.T) {
		eval := EvaluateDeposit(DepositLimitPolicy{}, 10_000_000, 10_000_000)
		assert.True(t, eval.Allowed)
	})
}
