package source_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"MarginLens/internal/event"
	"MarginLens/internal/ingestion"
	"MarginLens/internal/observability"
	"MarginLens/internal/source"
	"MarginLens/internal/testutil"
)

type stubSource struct {
	ds   event.Dataset
	err  error
	hits int
}

func (s *stubSource) Fetch(ctx context.Context) (event.Dataset, ingestion.Stats, error) {
	s.hits++
	if s.err != nil {
		return event.Dataset{}, ingestion.Stats{}, s.err
	}
	return s.ds, ingestion.Stats{}, nil
}

func (s *stubSource) Name() string { return "stub" }

func TestRefresher_InstallsDataset(t *testing.T) {
	stub := &stubSource{ds: testutil.SampleDataset(0)}
	r := source.NewRefresher(stub, time.Minute, observability.NewLoggerWithLevel("test", zerolog.Disabled), nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	current := r.Current()
	if len(current.Accounts) != 2 {
		t.Errorf("accounts: got %d, want 2", len(current.Accounts))
	}
	if stub.hits != 1 {
		t.Errorf("fetch count: got %d, want 1", stub.hits)
	}
}

func TestRefresher_FailedFetchKeepsPrevious(t *testing.T) {
	stub := &stubSource{ds: testutil.SampleDataset(0)}
	r := source.NewRefresher(stub, time.Minute, observability.NewLoggerWithLevel("test", zerolog.Disabled), nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	stub.err = errors.New("provider down")
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if current := r.Current(); len(current.Accounts) != 2 {
		t.Errorf("previous dataset lost: got %d accounts", len(current.Accounts))
	}
}

func TestRefresher_KickCoalesces(t *testing.T) {
	stub := &stubSource{}
	r := source.NewRefresher(stub, time.Minute, observability.NewLoggerWithLevel("test", zerolog.Disabled), nil)

	// Multiple kicks before the loop runs collapse into one pending signal.
	r.Kick()
	r.Kick()
	r.Kick()
	// No loop running; just assert no deadlock and Current is empty.
	if !r.Current().Empty() {
		t.Error("expected empty dataset before any refresh")
	}
}
