package bonus

import (
	"math"

	"github.com/turbobet/platform/internal/domain"
)

// ComputeBonusAmount returns the centavo bonus for a deposit against an
// offer: deposit x percentage/100 + fixed, clamped to the cap when set.
func ComputeBonusAmount(offer *domain.BonusOffer, depositAmount int64) int64 {
	var amount int64
	if offer.Percentage > 0 {
		amount = int64(math.Round(float64(depositAmount) * offer.Percentage / 100))
	}
	if offer.Fixed > 0 {
		amount += offer.Fixed
	}
	if offer.MaxBonus != nil && amount > *offer.MaxBonus {
		amount = *offer.MaxBonus
	}
	return amount
}

// ComputeRolloverRequired returns (deposit + bonus) x multiplier in centavos.
func ComputeRolloverRequired(depositAmount, bonusAmount int64, multiplier float64) int64 {
	return int64(math.Round(float64(depositAmount+bonusAmount) * multiplier))
}

// OutstandingTotal sums the remaining rollover across grants whose numeric
// requirement is unmet. Grants that already satisfy it contribute zero even
// if their status column still says active.
func OutstandingTotal(grants []domain.BonusGrant) int64 {
	var total int64
	for i := range grants {
		total += grants[i].Outstanding()
	}
	return total
}
