package domain

// DashboardStats aggregates the admin dashboard totals. Monetary values are
// centavos.
type DashboardStats struct {
	TotalDeposits       int64            `json:"total_deposits"`
	DepositsToday       int64            `json:"deposits_today"`
	TotalUsers          int64            `json:"total_users"`
	NewUsersToday       int64            `json:"new_users_today"`
	FirstDepositsToday  int64            `json:"first_deposits_today"`
	TotalWithdrawals    int64            `json:"total_withdrawals"`
	ActiveUsers         int64            `json:"active_users"`
	AverageDeposit      int64            `json:"average_deposit"`
	ConversionRate      float64          `json:"conversion_rate"`
	DepositsByStatus    map[string]int64 `json:"deposits_by_status"`
}
