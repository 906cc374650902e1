package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for MarginLens.
type Metrics struct {
	// --- Data provider / refresh ---
	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	DatasetRecords  *prometheus.GaugeVec
	RecordsSkipped  *prometheus.CounterVec
	LastRefreshUnix prometheus.Gauge

	// --- Engine ---
	ReplayDuration    prometheus.Histogram
	PositionsReplayed prometheus.Gauge
	EventsSkipped     *prometheus.CounterVec

	// --- HTTP API ---
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// --- Oracle ---
	OracleRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	httpBuckets := []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

	return &Metrics{
		RefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mlens_refresh_total",
			Help: "Dataset refresh attempts by source and outcome",
		}, []string{"source", "outcome"}),

		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mlens_refresh_duration_seconds",
			Help:    "Time to fetch and parse one full dataset",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		DatasetRecords: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mlens_dataset_records",
			Help: "Records in the current dataset by collection",
		}, []string{"collection"}),

		RecordsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mlens_records_skipped_total",
			Help: "Malformed records dropped during parsing by collection",
		}, []string{"collection"}),

		LastRefreshUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mlens_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),

		ReplayDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mlens_replay_duration_seconds",
			Help:    "Time to replay the full event set into positions",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		PositionsReplayed: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mlens_positions_replayed",
			Help: "Account positions produced by the last replay",
		}),

		EventsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mlens_replay_events_skipped_total",
			Help: "Events skipped during replay for unresolvable account references",
		}, []string{"collection"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mlens_http_requests_total",
			Help: "HTTP requests processed by method, route and status",
		}, []string{"method", "route", "status"}),

		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mlens_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: httpBuckets,
		}, []string{"method", "route"}),

		OracleRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mlens_oracle_requests_total",
			Help: "Price oracle requests by outcome",
		}, []string{"outcome"}),
	}
}
