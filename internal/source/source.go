// Package source supplies the three raw event collections to the
// analytics engine. The engine never knows how data arrived: every
// provider returns a complete, freshly built event.Dataset.
package source

import (
	"context"

	"MarginLens/internal/event"
	"MarginLens/internal/ingestion"
)

// Source fetches a complete dataset from one provider.
type Source interface {
	// Fetch retrieves the three collections. It returns a whole new
	// Dataset on every call; callers replace, never patch.
	Fetch(ctx context.Context) (event.Dataset, ingestion.Stats, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}
