package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"MarginLens/internal/event"
	"MarginLens/internal/ingestion"
)

// SnapshotSource reads a static JSON snapshot from disk. The snapshot
// is one document holding the three raw arrays:
//
//	{"accounts": [...], "loans": [...], "liquidations": [...]}
type SnapshotSource struct {
	path string
}

// NewSnapshotSource creates a snapshot-file provider.
func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{path: path}
}

func (s *SnapshotSource) Name() string {
	return "snapshot"
}

// Fetch re-reads the snapshot file. Malformed rows are skipped per the
// ingestion policy; only an unreadable or undecodable file is an error.
func (s *SnapshotSource) Fetch(ctx context.Context) (event.Dataset, ingestion.Stats, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return event.Dataset{}, ingestion.Stats{}, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var raw ingestion.RawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return event.Dataset{}, ingestion.Stats{}, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}

	ds, stats := ingestion.ParseDataset(raw, time.Now().UnixMilli())
	return ds, stats, nil
}
