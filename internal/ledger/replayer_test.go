package ledger_test

import (
	"reflect"
	"testing"

	"MarginLens/internal/event"
	"MarginLens/internal/ledger"
	"MarginLens/internal/testutil"
)

// ============================================================================
// Test: Replay attribution and counts
// ============================================================================

func TestReplay_EmptyDataset(t *testing.T) {
	positions, stats := ledger.Replay(event.Dataset{})
	if len(positions) != 0 {
		t.Errorf("expected empty map, got %d positions", len(positions))
	}
	if stats.SkippedLoans != 0 || stats.SkippedLiquidations != 0 {
		t.Errorf("expected zero skips, got %+v", stats)
	}
}

func TestReplay_SkipsEventsForUnknownAccounts(t *testing.T) {
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-1", "alice", 0)},
		Loans: []event.LoanEvent{
			testutil.Borrow("loan-1", "acct-1", "pool-x", 1000, 10),
			testutil.Borrow("loan-2", "ghost", "pool-x", 500, 20),
		},
		Liquidations: []event.LiquidationEvent{
			testutil.Liquidation("liq-1", "ghost", "pool-x", 500, 0, 30),
		},
	}

	positions, stats := ledger.Replay(ds)

	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if stats.SkippedLoans != 1 {
		t.Errorf("skipped loans: got %d, want 1", stats.SkippedLoans)
	}
	if stats.SkippedLiquidations != 1 {
		t.Errorf("skipped liquidations: got %d, want 1", stats.SkippedLiquidations)
	}
	if positions["acct-1"].BorrowCount != 1 {
		t.Errorf("borrow count: got %d, want 1", positions["acct-1"].BorrowCount)
	}
}

func TestReplay_BorrowRepayScenario(t *testing.T) {
	// Account created at t=0 borrows 1000 from pool X at t=1,
	// repays at t=10: no outstanding debt remains.
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-1", "alice", 0)},
		Loans: []event.LoanEvent{
			testutil.RepaidLoan("loan-1", "acct-1", "pool-x", 1000, 1, 10),
		},
	}

	positions, _ := ledger.Replay(ds)
	pos := positions["acct-1"]
	if pos == nil {
		t.Fatal("missing position for acct-1")
	}

	if pos.TotalOutstandingDebt != 0 {
		t.Errorf("outstanding debt: got %d, want 0", pos.TotalOutstandingDebt)
	}
	if pos.BorrowCount != 1 || pos.RepayCount != 1 {
		t.Errorf("counts: got borrow=%d repay=%d, want 1/1", pos.BorrowCount, pos.RepayCount)
	}
	if pos.RepayRatio != 100 {
		t.Errorf("repay ratio: got %v, want 100", pos.RepayRatio)
	}
	if pos.LastActivity != 10 {
		t.Errorf("last activity: got %d, want 10", pos.LastActivity)
	}
	if !reflect.DeepEqual(pos.PoolsUsed, []string{"pool-x"}) {
		t.Errorf("pools used: got %v, want [pool-x]", pos.PoolsUsed)
	}
}

func TestReplay_LiquidationExtinguishesDebt(t *testing.T) {
	// Borrow 500 at t=0, liquidated for 500 with default 100 at t=5:
	// the liquidation closes the full obligation, so pool debt is zero
	// and the default shows up only as a realized loss.
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-b", "bob", 0)},
		Loans: []event.LoanEvent{
			testutil.Borrow("loan-1", "acct-b", "pool-y", 500, 0),
		},
		Liquidations: []event.LiquidationEvent{
			testutil.Liquidation("liq-1", "acct-b", "pool-y", 500, 100, 5),
		},
	}

	positions, _ := ledger.Replay(ds)
	pos := positions["acct-b"]

	if debt := pos.OutstandingDebtByPool["pool-y"]; debt != 0 {
		t.Errorf("pool-y debt: got %d, want 0", debt)
	}
	if pos.TotalOutstandingDebt != 0 {
		t.Errorf("total outstanding: got %d, want 0", pos.TotalOutstandingDebt)
	}
	if pos.DefaultSum != 100 {
		t.Errorf("default sum: got %d, want 100", pos.DefaultSum)
	}
	if pos.LiquidationCount != 1 {
		t.Errorf("liquidation count: got %d, want 1", pos.LiquidationCount)
	}
}

// ============================================================================
// Test: invariants
// ============================================================================

func TestReplay_ClampedPoolSumEqualsTotal(t *testing.T) {
	// Over-repayment drives one pool negative in-map; the clamped sum
	// must still equal the reported total.
	repaidAt := int64(50)
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-1", "alice", 0)},
		Loans: []event.LoanEvent{
			testutil.Borrow("loan-1", "acct-1", "pool-a", 300, 10),
			{
				ID: "loan-2", AccountID: "acct-1", PoolID: "pool-b",
				Amount: 100, BorrowedAt: 20, RepaidAt: &repaidAt,
				Status: event.StatusRepaid,
			},
			{
				ID: "loan-3", AccountID: "acct-1", PoolID: "pool-b",
				Amount: 200, BorrowedAt: 25, RepaidAt: &repaidAt,
				Status: event.StatusRepaid,
			},
		},
		Liquidations: []event.LiquidationEvent{
			// Drains pool-b below zero.
			testutil.Liquidation("liq-1", "acct-1", "pool-b", 150, 0, 60),
		},
	}

	positions, _ := ledger.Replay(ds)

	for id, pos := range positions {
		var clamped int64
		for _, debt := range pos.OutstandingDebtByPool {
			if debt > 0 {
				clamped += debt
			}
		}
		if clamped != pos.TotalOutstandingDebt {
			t.Errorf("%s: clamped sum %d != total %d", id, clamped, pos.TotalOutstandingDebt)
		}
	}

	if positions["acct-1"].TotalOutstandingDebt != 300 {
		t.Errorf("total: got %d, want 300", positions["acct-1"].TotalOutstandingDebt)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	ds := testutil.SampleDataset(0)

	first, firstStats := ledger.Replay(ds)
	second, secondStats := ledger.Replay(ds)

	if !reflect.DeepEqual(first, second) {
		t.Error("two replays of identical input are not structurally equal")
	}
	if firstStats != secondStats {
		t.Errorf("stats differ: %+v vs %+v", firstStats, secondStats)
	}
}

func TestReplay_TimelineSortedByTimestamp(t *testing.T) {
	ds := testutil.SampleDataset(0)
	positions, _ := ledger.Replay(ds)

	for id, pos := range positions {
		for i := 1; i < len(pos.Events); i++ {
			if pos.Events[i].Timestamp < pos.Events[i-1].Timestamp {
				t.Errorf("%s: timeline out of order at index %d", id, i)
			}
		}
	}
}

func TestReplay_ZeroBorrowedYieldsZeroRatio(t *testing.T) {
	ds := event.Dataset{
		Accounts: []event.Account{testutil.Account("acct-1", "alice", 0)},
	}
	positions, _ := ledger.Replay(ds)
	if ratio := positions["acct-1"].RepayRatio; ratio != 0 {
		t.Errorf("repay ratio with no borrows: got %v, want 0", ratio)
	}
}
