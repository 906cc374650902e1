package ledger_test

import (
	"testing"

	"MarginLens/internal/event"
	"MarginLens/internal/ledger"
	"MarginLens/internal/testutil"
)

func positionFor(t *testing.T, ds event.Dataset, accountID string) *ledger.AccountPosition {
	t.Helper()
	positions, _ := ledger.Replay(ds)
	pos := positions[accountID]
	if pos == nil {
		t.Fatalf("missing position for %s", accountID)
	}
	return pos
}

// ============================================================================
// Test: FIFO matching
// ============================================================================

func TestMatchCycles_NilAndEmpty(t *testing.T) {
	if cycles := ledger.MatchCycles(nil); len(cycles) != 0 {
		t.Errorf("nil position: got %d cycles, want 0", len(cycles))
	}
	if cycles := ledger.MatchCycles(&ledger.AccountPosition{}); len(cycles) != 0 {
		t.Errorf("empty timeline: got %d cycles, want 0", len(cycles))
	}
}

func TestMatchCycles_SingleBorrowRepay(t *testing.T) {
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-1", "alice", 0)},
		Loans: []event.LoanEvent{
			testutil.RepaidLoan("loan-1", "acct-1", "pool-x", 1000, 1, 10),
		},
	}

	cycles := ledger.MatchCycles(positionFor(t, ds, "acct-1"))

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	c := cycles[0]
	if c.PoolID != "pool-x" {
		t.Errorf("pool: got %s, want pool-x", c.PoolID)
	}
	if c.AmountMatched != 1000 {
		t.Errorf("amount matched: got %d, want 1000", c.AmountMatched)
	}
	if c.Duration != 9 {
		t.Errorf("duration: got %d, want 9", c.Duration)
	}
}

func TestMatchCycles_PartialDrainLeavesBucketOpen(t *testing.T) {
	// Borrows of 100 at t1 and 200 at t2, one repay of 150 at t3:
	// the 100-bucket closes with duration t3-t1; the 200-bucket is
	// reduced to 150 remaining and emits nothing.
	pos := &ledger.AccountPosition{
		AccountID: "acct-1",
		Events: []event.TimelineEvent{
			{Kind: event.KindCreated, Timestamp: 0},
			{Kind: event.KindBorrowed, PoolID: "pool-x", Amount: 100, Timestamp: 10},
			{Kind: event.KindBorrowed, PoolID: "pool-x", Amount: 200, Timestamp: 20},
			{Kind: event.KindRepaid, PoolID: "pool-x", Amount: 150, Timestamp: 30},
		},
	}

	cycles := ledger.MatchCycles(pos)

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	if cycles[0].AmountMatched != 100 {
		t.Errorf("amount matched: got %d, want 100", cycles[0].AmountMatched)
	}
	if cycles[0].Duration != 20 {
		t.Errorf("duration: got %d, want 20 (t3-t1)", cycles[0].Duration)
	}
}

func TestMatchCycles_ExcessRepayDiscarded(t *testing.T) {
	pos := &ledger.AccountPosition{
		AccountID: "acct-1",
		Events: []event.TimelineEvent{
			{Kind: event.KindBorrowed, PoolID: "pool-x", Amount: 100, Timestamp: 10},
			{Kind: event.KindRepaid, PoolID: "pool-x", Amount: 500, Timestamp: 20},
			// A later repay finds no open buckets; nothing is fabricated.
			{Kind: event.KindRepaid, PoolID: "pool-x", Amount: 50, Timestamp: 30},
		},
	}

	cycles := ledger.MatchCycles(pos)

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	if cycles[0].AmountMatched != 100 || cycles[0].Duration != 10 {
		t.Errorf("got %+v, want amount 100 duration 10", cycles[0])
	}
}

func TestMatchCycles_LiquidationDrainsFullAmount(t *testing.T) {
	// Borrow 500 at t=0, liquidation of 500 with default 100 at t=5:
	// the liquidation drains the whole bucket, closing one cycle.
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-b", "bob", 0)},
		Loans: []event.LoanEvent{
			testutil.Borrow("loan-1", "acct-b", "pool-y", 500, 0),
		},
		Liquidations: []event.LiquidationEvent{
			testutil.Liquidation("liq-1", "acct-b", "pool-y", 500, 100, 5),
		},
	}

	cycles := ledger.MatchCycles(positionFor(t, ds, "acct-b"))

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	if cycles[0].PoolID != "pool-y" || cycles[0].AmountMatched != 500 || cycles[0].Duration != 5 {
		t.Errorf("got %+v, want pool-y/500/5", cycles[0])
	}
}

func TestMatchCycles_PoolsMatchedIndependently(t *testing.T) {
	pos := &ledger.AccountPosition{
		AccountID: "acct-1",
		Events: []event.TimelineEvent{
			{Kind: event.KindBorrowed, PoolID: "pool-a", Amount: 100, Timestamp: 0},
			{Kind: event.KindBorrowed, PoolID: "pool-b", Amount: 100, Timestamp: 1},
			// Repay in pool-b must not touch pool-a's bucket.
			{Kind: event.KindRepaid, PoolID: "pool-b", Amount: 100, Timestamp: 11},
		},
	}

	cycles := ledger.MatchCycles(pos)

	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	if cycles[0].PoolID != "pool-b" || cycles[0].Duration != 10 {
		t.Errorf("got %+v, want pool-b duration 10", cycles[0])
	}
}

func TestLoanCycle_Days(t *testing.T) {
	c := ledger.LoanCycle{Duration: 36 * 60 * 60 * 1000}
	if got := c.Days(); got != 1.5 {
		t.Errorf("days: got %v, want 1.5", got)
	}
}
