package source

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"MarginLens/internal/event"
	"MarginLens/internal/observability"
)

// Refresher owns the current dataset and keeps it fresh. Every refresh
// wholesale-replaces the held Dataset; derived state is always
// recomputed from scratch by callers, so there is no incremental path.
type Refresher struct {
	source   Source
	interval time.Duration
	logger   zerolog.Logger
	metrics  *observability.Metrics

	mu sync.RWMutex
	ds event.Dataset

	kick chan struct{}
}

// NewRefresher creates a refresher polling the source at interval.
func NewRefresher(src Source, interval time.Duration, logger zerolog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		source:   src,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		kick:     make(chan struct{}, 1),
	}
}

// Current returns the dataset from the last successful refresh. The
// returned value must be treated as read-only; a later refresh installs
// a new value rather than mutating this one.
func (r *Refresher) Current() event.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ds
}

// Refresh fetches once and installs the result. A failed fetch keeps
// the previous dataset in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	ds, stats, err := r.source.Fetch(ctx)

	if r.metrics != nil {
		r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if r.metrics != nil {
			r.metrics.RefreshTotal.WithLabelValues(r.source.Name(), "error").Inc()
		}
		r.logger.Error().Err(err).Str("source", r.source.Name()).Msg("dataset refresh failed")
		return err
	}

	r.mu.Lock()
	r.ds = ds
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RefreshTotal.WithLabelValues(r.source.Name(), "ok").Inc()
		r.metrics.DatasetRecords.WithLabelValues("accounts").Set(float64(len(ds.Accounts)))
		r.metrics.DatasetRecords.WithLabelValues("loans").Set(float64(len(ds.Loans)))
		r.metrics.DatasetRecords.WithLabelValues("liquidations").Set(float64(len(ds.Liquidations)))
		r.metrics.RecordsSkipped.WithLabelValues("accounts").Add(float64(stats.SkippedAccounts))
		r.metrics.RecordsSkipped.WithLabelValues("loans").Add(float64(stats.SkippedLoans))
		r.metrics.RecordsSkipped.WithLabelValues("liquidations").Add(float64(stats.SkippedLiquidations))
		r.metrics.LastRefreshUnix.SetToCurrentTime()
	}

	r.logger.Info().
		Str("source", r.source.Name()).
		Int("accounts", len(ds.Accounts)).
		Int("loans", len(ds.Loans)).
		Int("liquidations", len(ds.Liquidations)).
		Int("skipped", stats.Skipped()).
		Dur("took", time.Since(start)).
		Msg("dataset refreshed")
	return nil
}

// Kick requests an out-of-band refresh. Coalesces with any pending one.
func (r *Refresher) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. Out-of-band kicks (NATS
// invalidation) trigger an immediate refresh between ticks.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		case <-r.kick:
			r.Refresh(ctx)
		}
	}
}

// SubscribeInvalidation wires a NATS subject to Kick: upstream
// publishes an empty message whenever the collections change, and the
// refresher re-fetches instead of waiting for the next tick.
func (r *Refresher) SubscribeInvalidation(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		r.logger.Debug().Str("subject", msg.Subject).Msg("refresh invalidation received")
		r.Kick()
	})
}
