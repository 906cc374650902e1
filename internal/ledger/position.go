package ledger

import (
	"MarginLens/internal/event"
)

// AccountPosition is the derived state of one account after replaying
// every event that touches it. Recomputed wholesale on every replay;
// never mutated after construction.
type AccountPosition struct {
	AccountID             string                `json:"account_id"`
	Owner                 string                `json:"owner"`
	FirstSeen             int64                 `json:"first_seen"`
	LastActivity          int64                 `json:"last_activity"`
	PoolsUsed             []string              `json:"pools_used"`
	OutstandingDebtByPool map[string]int64      `json:"outstanding_debt_by_pool"`
	TotalOutstandingDebt  int64                 `json:"total_outstanding_debt"`
	BorrowCount           int                   `json:"borrow_count"`
	RepayCount            int                   `json:"repay_count"`
	LiquidationCount      int                   `json:"liquidation_count"`
	DefaultSum            int64                 `json:"default_sum"`
	RepayRatio            float64               `json:"repay_ratio"`
	Events                []event.TimelineEvent `json:"events"`
}

// ReplayStats counts records the replayer could not attribute.
// Loan and liquidation events referencing an account that was never
// created are skipped by policy, not treated as errors.
type ReplayStats struct {
	Accounts            int
	SkippedLoans        int
	SkippedLiquidations int
}
