package ledger

import "MarginLens/internal/event"

const millisPerDay = 24 * 60 * 60 * 1000

// LoanCycle is a closed borrow->repay/liquidation match produced by the
// FIFO duration matcher. Duration is in milliseconds between the borrow
// and the event that fully drained its bucket.
type LoanCycle struct {
	PoolID        string `json:"pool_id"`
	AmountMatched int64  `json:"amount_matched"`
	Duration      int64  `json:"duration_ms"`
}

// Days returns the cycle duration in fractional days.
func (c LoanCycle) Days() float64 {
	return float64(c.Duration) / millisPerDay
}

// bucket is an open, not-yet-fully-repaid borrow awaiting matching.
type bucket struct {
	remaining int64
	amount    int64
	timestamp int64
}

// MatchCycles reconstructs closed loan cycles from one account's
// timeline by matching repayments and liquidations against open borrow
// buckets oldest-first, per pool.
//
// This yields a duration estimate, not ground truth: it assumes
// repayments settle against the oldest open loan first, which the
// protocol does not guarantee. Repay amounts exceeding the sum of open
// buckets are discarded; no cycle is fabricated for the excess.
//
// Never fails: a nil position or empty timeline yields no cycles.
func MatchCycles(pos *AccountPosition) []LoanCycle {
	if pos == nil || len(pos.Events) == 0 {
		return nil
	}

	queues := make(map[string][]bucket)
	var cycles []LoanCycle

	for _, evt := range pos.Events {
		switch evt.Kind {
		case event.KindCreated:
			// No debt effect.
		case event.KindBorrowed:
			queues[evt.PoolID] = append(queues[evt.PoolID], bucket{
				remaining: evt.Amount,
				amount:    evt.Amount,
				timestamp: evt.Timestamp,
			})
		case event.KindRepaid, event.KindLiquidated:
			// Liquidations drain by the full liquidation amount: the
			// defaulted portion ends the loan just as a repayment would.
			cycles = drain(queues, evt.PoolID, evt.Amount, evt.Timestamp, cycles)
		}
	}

	return cycles
}

// drain applies amount against the pool's open buckets front-first,
// emitting a cycle for every bucket it fully consumes.
func drain(queues map[string][]bucket, poolID string, amount, at int64, cycles []LoanCycle) []LoanCycle {
	queue := queues[poolID]
	remaining := amount

	for remaining > 0 && len(queue) > 0 {
		front := &queue[0]
		if remaining < front.remaining {
			front.remaining -= remaining
			remaining = 0
			break
		}

		remaining -= front.remaining
		cycles = append(cycles, LoanCycle{
			PoolID:        poolID,
			AmountMatched: front.amount,
			Duration:      at - front.timestamp,
		})
		queue = queue[1:]
	}

	queues[poolID] = queue
	return cycles
}
