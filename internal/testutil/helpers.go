package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"MarginLens/internal/event"
)

// Account builds an account fixture.
func Account(id, owner string, createdAt int64) event.Account {
	return event.Account{ID: id, Owner: owner, CreatedAt: createdAt}
}

// Borrow builds an open loan fixture.
func Borrow(id, accountID, poolID string, amount, borrowedAt int64) event.LoanEvent {
	return event.LoanEvent{
		ID:         id,
		AccountID:  accountID,
		PoolID:     poolID,
		Amount:     amount,
		BorrowedAt: borrowedAt,
		Status:     event.StatusBorrowed,
	}
}

// RepaidLoan builds a loan fixture that was repaid at repaidAt.
func RepaidLoan(id, accountID, poolID string, amount, borrowedAt, repaidAt int64) event.LoanEvent {
	ts := repaidAt
	return event.LoanEvent{
		ID:         id,
		AccountID:  accountID,
		PoolID:     poolID,
		Amount:     amount,
		BorrowedAt: borrowedAt,
		RepaidAt:   &ts,
		Status:     event.StatusRepaid,
	}
}

// Liquidation builds a liquidation fixture. Rewards default to zero;
// set them on the returned value when a test needs them.
func Liquidation(id, accountID, poolID string, amount, defaultAmount, at int64) event.LiquidationEvent {
	return event.LiquidationEvent{
		ID:                id,
		AccountID:         accountID,
		PoolID:            poolID,
		LiquidationAmount: amount,
		DefaultAmount:     defaultAmount,
		LiquidatedAt:      at,
	}
}

// SampleDataset builds a small mixed dataset with activity spread from
// base onward: two accounts, three pools, repaid and open loans, and one
// partially-defaulted liquidation.
func SampleDataset(base int64) event.Dataset {
	return event.Dataset{
		Accounts: []event.Account{
			Account("acct-1", "alice", base),
			Account("acct-2", "bob", base+5),
		},
		Loans: []event.LoanEvent{
			RepaidLoan("loan-1", "acct-1", "pool-a", 1000, base+10, base+100),
			Borrow("loan-2", "acct-1", "pool-b", 400, base+20),
			Borrow("loan-3", "acct-2", "pool-a", 250, base+30),
			RepaidLoan("loan-4", "acct-2", "pool-c", 600, base+40, base+90),
		},
		Liquidations: []event.LiquidationEvent{
			Liquidation("liq-1", "acct-2", "pool-a", 250, 50, base+120),
		},
		FetchedAt: base + 200,
	}
}

// RandomID returns a UUID string for fixtures that need unique IDs.
func RandomID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
