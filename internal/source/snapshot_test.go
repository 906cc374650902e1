package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"MarginLens/internal/source"
)

func writeSnapshot(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestSnapshotSource_Fetch(t *testing.T) {
	path := writeSnapshot(t, `{
		"accounts": [
			{"id": "acct-1", "owner": "alice", "created_at": 1000}
		],
		"loans": [
			{"id": "loan-1", "account_id": "acct-1", "pool_id": "pool-a",
			 "amount": 500, "borrowed_at": 2000, "status": "borrowed"},
			{"id": "loan-bad", "status": "nonsense"}
		],
		"liquidations": []
	}`)

	ds, stats, err := source.NewSnapshotSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(ds.Accounts) != 1 || len(ds.Loans) != 1 {
		t.Errorf("got %d accounts, %d loans; want 1/1", len(ds.Accounts), len(ds.Loans))
	}
	if stats.SkippedLoans != 1 {
		t.Errorf("skipped loans: got %d, want 1", stats.SkippedLoans)
	}
	if ds.FetchedAt == 0 {
		t.Error("fetched_at not set")
	}
}

func TestSnapshotSource_MissingFile(t *testing.T) {
	src := source.NewSnapshotSource(filepath.Join(t.TempDir(), "absent.json"))
	if _, _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSnapshotSource_UndecodableDocument(t *testing.T) {
	path := writeSnapshot(t, `not a json document`)
	if _, _, err := source.NewSnapshotSource(path).Fetch(context.Background()); err == nil {
		t.Error("expected error for undecodable document")
	}
}
