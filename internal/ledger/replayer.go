package ledger

import (
	"sort"

	"MarginLens/internal/event"
)

// Replay folds the three event collections into one AccountPosition per
// account. Pure and deterministic: identical inputs produce structurally
// equal output regardless of input ordering or call order.
//
// Attribution policy: loan and liquidation events whose account_id does
// not match any account record are silently skipped and counted in the
// returned ReplayStats.
//
// Debt rule: outstanding debt per pool accumulates +Amount on borrow,
// -Amount on repay and -LiquidationAmount on liquidation. A liquidation
// extinguishes the obligation entirely; the unrecovered DefaultAmount is
// tracked separately as a realized loss, not as debt still owed.
func Replay(ds event.Dataset) (map[string]*AccountPosition, ReplayStats) {
	positions := make(map[string]*AccountPosition, len(ds.Accounts))
	stats := ReplayStats{Accounts: len(ds.Accounts)}

	sums := make(map[string]*loanTotals, len(ds.Accounts))

	for _, acct := range ds.Accounts {
		positions[acct.ID] = &AccountPosition{
			AccountID:             acct.ID,
			Owner:                 acct.Owner,
			FirstSeen:             acct.CreatedAt,
			LastActivity:          acct.CreatedAt,
			OutstandingDebtByPool: make(map[string]int64),
			Events: []event.TimelineEvent{{
				Kind:      event.KindCreated,
				Timestamp: acct.CreatedAt,
			}},
		}
		sums[acct.ID] = &loanTotals{}
	}

	for i := range ds.Loans {
		loan := &ds.Loans[i]
		pos, ok := positions[loan.AccountID]
		if !ok {
			stats.SkippedLoans++
			continue
		}

		pos.BorrowCount++
		pos.OutstandingDebtByPool[loan.PoolID] += loan.Amount
		sums[loan.AccountID].borrowed += loan.Amount
		pos.Events = append(pos.Events, event.TimelineEvent{
			Kind:      event.KindBorrowed,
			PoolID:    loan.PoolID,
			Amount:    loan.Amount,
			Timestamp: loan.BorrowedAt,
		})

		if loan.Repaid() {
			pos.RepayCount++
			pos.OutstandingDebtByPool[loan.PoolID] -= loan.Amount
			sums[loan.AccountID].repaid += loan.Amount
			pos.Events = append(pos.Events, event.TimelineEvent{
				Kind:      event.KindRepaid,
				PoolID:    loan.PoolID,
				Amount:    loan.Amount,
				Timestamp: *loan.RepaidAt,
			})
		}
	}

	for i := range ds.Liquidations {
		liq := &ds.Liquidations[i]
		pos, ok := positions[liq.AccountID]
		if !ok {
			stats.SkippedLiquidations++
			continue
		}

		pos.LiquidationCount++
		pos.DefaultSum += liq.DefaultAmount
		pos.OutstandingDebtByPool[liq.PoolID] -= liq.LiquidationAmount
		pos.Events = append(pos.Events, event.TimelineEvent{
			Kind:          event.KindLiquidated,
			PoolID:        liq.PoolID,
			Amount:        liq.LiquidationAmount,
			DefaultAmount: liq.DefaultAmount,
			Timestamp:     liq.LiquidatedAt,
		})
	}

	for id, pos := range positions {
		finalize(pos, sums[id])
	}

	return positions, stats
}

type loanTotals struct {
	borrowed int64
	repaid   int64
}

// finalize sorts the timeline and derives the scalar fields that depend
// on the complete event set.
func finalize(pos *AccountPosition, sum *loanTotals) {
	sort.SliceStable(pos.Events, func(i, j int) bool {
		return pos.Events[i].Timestamp < pos.Events[j].Timestamp
	})

	for _, evt := range pos.Events {
		if evt.Timestamp > pos.LastActivity {
			pos.LastActivity = evt.Timestamp
		}
		if evt.PoolID != "" {
			pos.addPool(evt.PoolID)
		}
	}
	sort.Strings(pos.PoolsUsed)

	// A pool's balance may go transiently negative in-map (repayments or
	// liquidations overlapping a partially recorded borrow history); each
	// pool's contribution is clamped at zero before summing.
	var total int64
	for _, debt := range pos.OutstandingDebtByPool {
		if debt > 0 {
			total += debt
		}
	}
	pos.TotalOutstandingDebt = total

	if sum.borrowed > 0 {
		pos.RepayRatio = float64(sum.repaid) / float64(sum.borrowed) * 100
	}
}

func (p *AccountPosition) addPool(poolID string) {
	for _, existing := range p.PoolsUsed {
		if existing == poolID {
			return
		}
	}
	p.PoolsUsed = append(p.PoolsUsed, poolID)
}
