package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"MarginLens/internal/event"
	"MarginLens/internal/ingestion"
)

// Schema creates the event tables the Postgres provider reads. Applied
// by cmd/seeder before inserting fixtures.
const Schema = `
CREATE SCHEMA IF NOT EXISTS marginlens;

CREATE TABLE IF NOT EXISTS marginlens.accounts (
	id         TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS marginlens.loans (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	pool_id     TEXT NOT NULL,
	amount      BIGINT NOT NULL,
	borrowed_at BIGINT NOT NULL,
	repaid_at   BIGINT,
	status      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS marginlens.liquidations (
	id                      TEXT PRIMARY KEY,
	account_id              TEXT NOT NULL,
	pool_id                 TEXT NOT NULL,
	liquidation_amount      BIGINT NOT NULL,
	default_amount          BIGINT NOT NULL,
	pool_reward_amount      BIGINT NOT NULL,
	liquidator_base_reward  BIGINT NOT NULL,
	liquidator_quote_reward BIGINT NOT NULL,
	liquidated_at           BIGINT NOT NULL
);
`

// PostgresSource reads the three collections from Postgres tables.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource creates a Postgres-backed provider.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

// EnsureSchema applies the event table schema.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Fetch reads all three tables into a fresh dataset. Rows violating a
// model invariant are skipped and counted, matching the parse policy of
// the other providers.
func (s *PostgresSource) Fetch(ctx context.Context) (event.Dataset, ingestion.Stats, error) {
	ds := event.Dataset{FetchedAt: time.Now().UnixMilli()}
	var stats ingestion.Stats

	if err := s.fetchAccounts(ctx, &ds); err != nil {
		return event.Dataset{}, ingestion.Stats{}, err
	}
	if err := s.fetchLoans(ctx, &ds, &stats); err != nil {
		return event.Dataset{}, ingestion.Stats{}, err
	}
	if err := s.fetchLiquidations(ctx, &ds, &stats); err != nil {
		return event.Dataset{}, ingestion.Stats{}, err
	}

	return ds, stats, nil
}

func (s *PostgresSource) fetchAccounts(ctx context.Context, ds *event.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, created_at FROM marginlens.accounts
	`)
	if err != nil {
		return fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var acct event.Account
		if err := rows.Scan(&acct.ID, &acct.Owner, &acct.CreatedAt); err != nil {
			return fmt.Errorf("scan account: %w", err)
		}
		ds.Accounts = append(ds.Accounts, acct)
	}
	return rows.Err()
}

func (s *PostgresSource) fetchLoans(ctx context.Context, ds *event.Dataset, stats *ingestion.Stats) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, pool_id, amount, borrowed_at, repaid_at, status
		FROM marginlens.loans
	`)
	if err != nil {
		return fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var loan event.LoanEvent
		var repaidAt sql.NullInt64
		var status string
		if err := rows.Scan(
			&loan.ID, &loan.AccountID, &loan.PoolID, &loan.Amount,
			&loan.BorrowedAt, &repaidAt, &status,
		); err != nil {
			return fmt.Errorf("scan loan: %w", err)
		}

		parsed, err := event.ParseLoanStatus(status)
		if err != nil {
			stats.SkippedLoans++
			continue
		}
		loan.Status = parsed
		if repaidAt.Valid {
			ts := repaidAt.Int64
			loan.RepaidAt = &ts
		}
		if (loan.Status == event.StatusRepaid) != repaidAt.Valid {
			stats.SkippedLoans++
			continue
		}

		ds.Loans = append(ds.Loans, loan)
	}
	return rows.Err()
}

func (s *PostgresSource) fetchLiquidations(ctx context.Context, ds *event.Dataset, stats *ingestion.Stats) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, pool_id, liquidation_amount, default_amount,
		       pool_reward_amount, liquidator_base_reward, liquidator_quote_reward,
		       liquidated_at
		FROM marginlens.liquidations
	`)
	if err != nil {
		return fmt.Errorf("query liquidations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var liq event.LiquidationEvent
		if err := rows.Scan(
			&liq.ID, &liq.AccountID, &liq.PoolID, &liq.LiquidationAmount,
			&liq.DefaultAmount, &liq.PoolRewardAmount, &liq.LiquidatorBaseReward,
			&liq.LiquidatorQuoteReward, &liq.LiquidatedAt,
		); err != nil {
			return fmt.Errorf("scan liquidation: %w", err)
		}

		if liq.DefaultAmount < 0 || liq.DefaultAmount > liq.LiquidationAmount {
			stats.SkippedLiquidations++
			continue
		}

		ds.Liquidations = append(ds.Liquidations, liq)
	}
	return rows.Err()
}
