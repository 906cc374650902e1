// Package ingestion converts raw JSON collections from a data provider
// into typed events. One bad record never aborts a parse: malformed rows
// are skipped and counted so the rest of the dataset stays usable.
package ingestion

import (
	"encoding/json"
	"fmt"

	"MarginLens/internal/event"
)

// RawDataset mirrors the provider wire format: three homogeneous JSON
// arrays, field names in snake_case.
type RawDataset struct {
	Accounts     []json.RawMessage `json:"accounts"`
	Loans        []json.RawMessage `json:"loans"`
	Liquidations []json.RawMessage `json:"liquidations"`
}

// Stats counts records dropped during parsing, per collection.
type Stats struct {
	SkippedAccounts     int
	SkippedLoans        int
	SkippedLiquidations int
}

// Skipped reports the total number of dropped records.
func (s Stats) Skipped() int {
	return s.SkippedAccounts + s.SkippedLoans + s.SkippedLiquidations
}

// ParseDataset converts a raw dataset into typed collections, skipping
// records that fail to decode or violate a model invariant.
func ParseDataset(raw RawDataset, fetchedAt int64) (event.Dataset, Stats) {
	ds := event.Dataset{FetchedAt: fetchedAt}
	var stats Stats

	for _, data := range raw.Accounts {
		acct, err := ParseAccount(data)
		if err != nil {
			stats.SkippedAccounts++
			continue
		}
		ds.Accounts = append(ds.Accounts, acct)
	}

	for _, data := range raw.Loans {
		loan, err := ParseLoan(data)
		if err != nil {
			stats.SkippedLoans++
			continue
		}
		ds.Loans = append(ds.Loans, loan)
	}

	for _, data := range raw.Liquidations {
		liq, err := ParseLiquidation(data)
		if err != nil {
			stats.SkippedLiquidations++
			continue
		}
		ds.Liquidations = append(ds.Liquidations, liq)
	}

	return ds, stats
}

// --- JSON wire formats ---

type accountJSON struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	CreatedAt int64  `json:"created_at"`
}

// ParseAccount decodes and validates one account record.
func ParseAccount(data []byte) (event.Account, error) {
	var j accountJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return event.Account{}, fmt.Errorf("parse account: %w", err)
	}
	if j.ID == "" {
		return event.Account{}, fmt.Errorf("account missing id")
	}
	if j.Owner == "" {
		return event.Account{}, fmt.Errorf("account %s missing owner", j.ID)
	}
	if j.CreatedAt < 0 {
		return event.Account{}, fmt.Errorf("account %s has negative created_at", j.ID)
	}

	return event.Account{ID: j.ID, Owner: j.Owner, CreatedAt: j.CreatedAt}, nil
}

type loanJSON struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	PoolID     string `json:"pool_id"`
	Amount     int64  `json:"amount"`
	BorrowedAt int64  `json:"borrowed_at"`
	RepaidAt   *int64 `json:"repaid_at"`
	Status     string `json:"status"`
}

// ParseLoan decodes and validates one loan record. Enforces the model
// invariant that repaid_at is set if and only if status is "repaid",
// with repaid_at >= borrowed_at.
func ParseLoan(data []byte) (event.LoanEvent, error) {
	var j loanJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return event.LoanEvent{}, fmt.Errorf("parse loan: %w", err)
	}
	if j.ID == "" || j.AccountID == "" || j.PoolID == "" {
		return event.LoanEvent{}, fmt.Errorf("loan %q missing required reference", j.ID)
	}
	if j.Amount < 0 {
		return event.LoanEvent{}, fmt.Errorf("loan %s has negative amount", j.ID)
	}

	status, err := event.ParseLoanStatus(j.Status)
	if err != nil {
		return event.LoanEvent{}, fmt.Errorf("loan %s: %w", j.ID, err)
	}

	if (status == event.StatusRepaid) != (j.RepaidAt != nil) {
		return event.LoanEvent{}, fmt.Errorf("loan %s: repaid_at and status disagree", j.ID)
	}
	if j.RepaidAt != nil && *j.RepaidAt < j.BorrowedAt {
		return event.LoanEvent{}, fmt.Errorf("loan %s: repaid_at before borrowed_at", j.ID)
	}

	return event.LoanEvent{
		ID:         j.ID,
		AccountID:  j.AccountID,
		PoolID:     j.PoolID,
		Amount:     j.Amount,
		BorrowedAt: j.BorrowedAt,
		RepaidAt:   j.RepaidAt,
		Status:     status,
	}, nil
}

type liquidationJSON struct {
	ID                    string `json:"id"`
	AccountID             string `json:"account_id"`
	PoolID                string `json:"pool_id"`
	LiquidationAmount     int64  `json:"liquidation_amount"`
	DefaultAmount         int64  `json:"default_amount"`
	PoolRewardAmount      int64  `json:"pool_reward_amount"`
	LiquidatorBaseReward  int64  `json:"liquidator_base_reward"`
	LiquidatorQuoteReward int64  `json:"liquidator_quote_reward"`
	LiquidatedAt          int64  `json:"liquidated_at"`
}

// ParseLiquidation decodes and validates one liquidation record.
// Enforces 0 <= default_amount <= liquidation_amount.
func ParseLiquidation(data []byte) (event.LiquidationEvent, error) {
	var j liquidationJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return event.LiquidationEvent{}, fmt.Errorf("parse liquidation: %w", err)
	}
	if j.ID == "" || j.AccountID == "" || j.PoolID == "" {
		return event.LiquidationEvent{}, fmt.Errorf("liquidation %q missing required reference", j.ID)
	}
	if j.LiquidationAmount < 0 {
		return event.LiquidationEvent{}, fmt.Errorf("liquidation %s has negative amount", j.ID)
	}
	if j.DefaultAmount < 0 || j.DefaultAmount > j.LiquidationAmount {
		return event.LiquidationEvent{}, fmt.Errorf("liquidation %s: default_amount outside [0, liquidation_amount]", j.ID)
	}

	return event.LiquidationEvent{
		ID:                    j.ID,
		AccountID:             j.AccountID,
		PoolID:                j.PoolID,
		LiquidationAmount:     j.LiquidationAmount,
		DefaultAmount:         j.DefaultAmount,
		PoolRewardAmount:      j.PoolRewardAmount,
		LiquidatorBaseReward:  j.LiquidatorBaseReward,
		LiquidatorQuoteReward: j.LiquidatorQuoteReward,
		LiquidatedAt:          j.LiquidatedAt,
	}, nil
}
