package aggregate

import (
	"sort"

	"MarginLens/internal/event"
)

// PoolSnapshot is the derived state of one liquidity pool. Outstanding
// debt is computed over the full unfiltered event set; the deltas,
// liquidation figures and default rate are range-limited as named.
type PoolSnapshot struct {
	PoolID          string `json:"pool_id"`
	OutstandingDebt int64  `json:"outstanding_debt"`

	Borrowed24h int64 `json:"borrowed_24h"`
	Repaid24h   int64 `json:"repaid_24h"`
	Net24h      int64 `json:"net_24h"`

	Borrowed7d int64 `json:"borrowed_7d"`
	Repaid7d   int64 `json:"repaid_7d"`
	Net7d      int64 `json:"net_7d"`

	Liquidations7d int     `json:"liquidations_7d"`
	PoolRewards7d  int64   `json:"pool_rewards_7d"`
	DefaultRate7d  float64 `json:"default_rate_7d"`

	// DailySeries holds borrow volume for 7 fixed-width trailing 24h
	// buckets ending at now, oldest first. Always the trailing week,
	// independent of any caller-selected window.
	DailySeries []int64 `json:"daily_series"`
}

type poolAccum struct {
	snap          PoolSnapshot
	liquidated7d  int64
	defaulted7d   int64
	liquidatedAll int64
}

// AggregatePools folds the raw collections into one snapshot per pool,
// sorted by outstanding debt descending, then pool ID for determinism.
func AggregatePools(ds event.Dataset, now int64) []PoolSnapshot {
	dayAgo := now - millisPerDay
	weekAgo := now - 7*millisPerDay

	accums := make(map[string]*poolAccum)
	get := func(poolID string) *poolAccum {
		acc, ok := accums[poolID]
		if !ok {
			acc = &poolAccum{snap: PoolSnapshot{
				PoolID:      poolID,
				DailySeries: make([]int64, 7),
			}}
			accums[poolID] = acc
		}
		return acc
	}

	for i := range ds.Loans {
		loan := &ds.Loans[i]
		acc := get(loan.PoolID)

		acc.snap.OutstandingDebt += loan.Amount
		if loan.BorrowedAt >= dayAgo && loan.BorrowedAt <= now {
			acc.snap.Borrowed24h += loan.Amount
		}
		if loan.BorrowedAt >= weekAgo && loan.BorrowedAt <= now {
			acc.snap.Borrowed7d += loan.Amount
		}
		if bucket := dailyBucket(loan.BorrowedAt, now); bucket >= 0 {
			acc.snap.DailySeries[bucket] += loan.Amount
		}

		if loan.Repaid() {
			acc.snap.OutstandingDebt -= loan.Amount
			if *loan.RepaidAt >= dayAgo && *loan.RepaidAt <= now {
				acc.snap.Repaid24h += loan.Amount
			}
			if *loan.RepaidAt >= weekAgo && *loan.RepaidAt <= now {
				acc.snap.Repaid7d += loan.Amount
			}
		}
	}

	for i := range ds.Liquidations {
		liq := &ds.Liquidations[i]
		acc := get(liq.PoolID)

		// Liquidation extinguishes the full obligation; the defaulted
		// portion is a realized loss, not remaining debt.
		acc.snap.OutstandingDebt -= liq.LiquidationAmount
		acc.liquidatedAll += liq.LiquidationAmount

		if liq.LiquidatedAt >= weekAgo && liq.LiquidatedAt <= now {
			acc.snap.Liquidations7d++
			acc.snap.PoolRewards7d += liq.PoolRewardAmount
			acc.liquidated7d += liq.LiquidationAmount
			acc.defaulted7d += liq.DefaultAmount
		}
	}

	snapshots := make([]PoolSnapshot, 0, len(accums))
	for _, acc := range accums {
		if acc.snap.OutstandingDebt < 0 {
			acc.snap.OutstandingDebt = 0
		}
		acc.snap.Net24h = acc.snap.Borrowed24h - acc.snap.Repaid24h
		acc.snap.Net7d = acc.snap.Borrowed7d - acc.snap.Repaid7d
		if acc.liquidated7d > 0 {
			acc.snap.DefaultRate7d = float64(acc.defaulted7d) / float64(acc.liquidated7d) * 100
		}
		snapshots = append(snapshots, acc.snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].OutstandingDebt != snapshots[j].OutstandingDebt {
			return snapshots[i].OutstandingDebt > snapshots[j].OutstandingDebt
		}
		return snapshots[i].PoolID < snapshots[j].PoolID
	})

	return snapshots
}

// dailyBucket maps a timestamp to one of 7 trailing 24h buckets ending
// at now, oldest first. Returns -1 outside the trailing week.
func dailyBucket(ts, now int64) int {
	if ts > now || ts <= now-7*millisPerDay {
		return -1
	}
	age := now - ts
	bucket := 6 - int(age/millisPerDay)
	if bucket < 0 || bucket > 6 {
		return -1
	}
	return bucket
}
