// Package query provides free-text search and multi-field sorting over
// replayed account positions. It never mutates its inputs; results are
// freshly allocated slices sharing the position values.
package query

import (
	"sort"
	"strings"

	"MarginLens/internal/ledger"
)

// SortField names a sortable AccountPosition field.
type SortField string

const (
	SortByOwner            SortField = "owner"
	SortByAccountID        SortField = "account_id"
	SortByFirstSeen        SortField = "first_seen"
	SortByLastActivity     SortField = "last_activity"
	SortByOutstandingDebt  SortField = "outstanding_debt"
	SortByBorrowCount      SortField = "borrow_count"
	SortByRepayCount       SortField = "repay_count"
	SortByLiquidationCount SortField = "liquidation_count"
	SortByDefaultSum       SortField = "default_sum"
	SortByRepayRatio       SortField = "repay_ratio"
	SortByPoolsUsed        SortField = "pools_used"
)

// SortDirection orders results ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Run applies search then sort in one call.
func Run(positions []*ledger.AccountPosition, term string, field SortField, dir SortDirection) []*ledger.AccountPosition {
	return Sort(Search(positions, term), field, dir)
}

// Search filters positions by case-insensitive substring match against
// the owner, the account ID, or any used pool ID. An empty term passes
// everything through.
func Search(positions []*ledger.AccountPosition, term string) []*ledger.AccountPosition {
	out := make([]*ledger.AccountPosition, 0, len(positions))
	if term == "" {
		return append(out, positions...)
	}

	needle := strings.ToLower(term)
	for _, pos := range positions {
		if matches(pos, needle) {
			out = append(out, pos)
		}
	}
	return out
}

func matches(pos *ledger.AccountPosition, needle string) bool {
	if strings.Contains(strings.ToLower(pos.Owner), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(pos.AccountID), needle) {
		return true
	}
	for _, poolID := range pos.PoolsUsed {
		if strings.Contains(strings.ToLower(poolID), needle) {
			return true
		}
	}
	return false
}

// Sort orders positions by the named field. The sort is stable: ties
// retain their relative input order. Numeric fields compare by numeric
// difference, pools_used by length, everything else lexicographically.
// An unknown field falls back to last_activity.
func Sort(positions []*ledger.AccountPosition, field SortField, dir SortDirection) []*ledger.AccountPosition {
	out := make([]*ledger.AccountPosition, len(positions))
	copy(out, positions)

	sign := 1.0
	if dir == SortDesc {
		sign = -1.0
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sign*compare(out[i], out[j], field) < 0
	})
	return out
}

func compare(a, b *ledger.AccountPosition, field SortField) float64 {
	switch field {
	case SortByOwner:
		return float64(strings.Compare(a.Owner, b.Owner))
	case SortByAccountID:
		return float64(strings.Compare(a.AccountID, b.AccountID))
	case SortByFirstSeen:
		return float64(a.FirstSeen - b.FirstSeen)
	case SortByOutstandingDebt:
		return float64(a.TotalOutstandingDebt - b.TotalOutstandingDebt)
	case SortByBorrowCount:
		return float64(a.BorrowCount - b.BorrowCount)
	case SortByRepayCount:
		return float64(a.RepayCount - b.RepayCount)
	case SortByLiquidationCount:
		return float64(a.LiquidationCount - b.LiquidationCount)
	case SortByDefaultSum:
		return float64(a.DefaultSum - b.DefaultSum)
	case SortByRepayRatio:
		return a.RepayRatio - b.RepayRatio
	case SortByPoolsUsed:
		return float64(len(a.PoolsUsed) - len(b.PoolsUsed))
	default:
		return float64(a.LastActivity - b.LastActivity)
	}
}
