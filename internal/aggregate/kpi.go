package aggregate

import "MarginLens/internal/event"

// KPIBundle holds the scalar metrics for one caller-selected window.
// All amounts are minor currency units.
type KPIBundle struct {
	TotalBorrowed    int64 `json:"total_borrowed"`
	TotalRepaid      int64 `json:"total_repaid"`
	LiquidationCount int   `json:"liquidation_count"`
	DefaultSum       int64 `json:"default_sum"`
	PoolRewardSum    int64 `json:"pool_reward_sum"`
	NetDebtChange    int64 `json:"net_debt_change"`

	// ActiveAccounts counts distinct owners among accounts created
	// within the selected window.
	ActiveAccounts int `json:"active_accounts"`

	// NewAccounts is always the fixed trailing 24h regardless of the
	// selected window.
	NewAccounts int `json:"new_accounts"`
}

// Aggregate recomputes the KPI bundle for [windowStart, now] by
// filtering the raw collections per call. windowStart == 0 means
// all-time. Loans count toward "borrowed" by their borrow timestamp and
// toward "repaid" by their repay timestamp, so a loan borrowed before
// the window but repaid inside it still counts as repaid-in-window.
func Aggregate(ds event.Dataset, windowStart, now int64) KPIBundle {
	var kpi KPIBundle
	var liquidatedInWindow int64

	for i := range ds.Loans {
		loan := &ds.Loans[i]
		if inWindow(loan.BorrowedAt, windowStart, now) {
			kpi.TotalBorrowed += loan.Amount
		}
		if loan.Repaid() && inWindow(*loan.RepaidAt, windowStart, now) {
			kpi.TotalRepaid += loan.Amount
		}
	}

	for i := range ds.Liquidations {
		liq := &ds.Liquidations[i]
		if !inWindow(liq.LiquidatedAt, windowStart, now) {
			continue
		}
		kpi.LiquidationCount++
		kpi.DefaultSum += liq.DefaultAmount
		kpi.PoolRewardSum += liq.PoolRewardAmount
		liquidatedInWindow += liq.LiquidationAmount
	}

	kpi.NetDebtChange = kpi.TotalBorrowed - kpi.TotalRepaid - liquidatedInWindow

	owners := make(map[string]struct{})
	dayAgo := now - millisPerDay
	for _, acct := range ds.Accounts {
		if inWindow(acct.CreatedAt, windowStart, now) {
			owners[acct.Owner] = struct{}{}
		}
		if acct.CreatedAt >= dayAgo && acct.CreatedAt <= now {
			kpi.NewAccounts++
		}
	}
	kpi.ActiveAccounts = len(owners)

	return kpi
}
