package policy

// DepositLimitPolicy defines responsible gaming deposit limits. Amounts are
// centavos.
type DepositLimitPolicy struct {
	SingleDepositMax int64 `json:"single_deposit_max"`
	DailyDepositMax  int64 `json:"daily_deposit_max"`
}

// DefaultDepositLimits returns the default limits: R$ 5.000 per deposit,
// R$ 10.000 per day.
func DefaultDepositLimits() DepositLimitPolicy {
	return DepositLimitPolicy{
		SingleDepositMax: 500_000,
		DailyDepositMax:  1_000_000,
	}
}

// DepositEvaluation holds the result of a deposit limit check.
type DepositEvaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	LimitValue    int64  `json:"limit_value,omitempty"`
}

// EvaluateDeposit checks a deposit amount against the policy. dailyDeposits
// is the user's settled deposit total for the current day.
func EvaluateDeposit(policy DepositLimitPolicy, amount, dailyDeposits int64) DepositEvaluation {
	if policy.SingleDepositMax > 0 && amount > policy.SingleDepositMax {
		return DepositEvaluation{
			Allowed:       false,
			BreachedLimit: "single_deposit",
			LimitValue:    policy.SingleDepositMax,
		}
	}
	if policy.DailyDepositMax > 0 && dailyDeposits+amount > policy.DailyDepositMax {
		return DepositEvaluation{
			Allowed:       false,
			BreachedLimit: "daily_deposit",
			LimitValue:    policy.DailyDepositMax,
		}
	}
	return DepositEvaluation{Allowed: true}
}
