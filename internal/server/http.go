// Package server exposes the analytics engine over HTTP/JSON. Every
// request recomputes its response from the refresher's current dataset;
// nothing derived is cached between requests.
package server

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"MarginLens/internal/aggregate"
	"MarginLens/internal/ledger"
	"MarginLens/internal/observability"
	"MarginLens/internal/oracle"
	"MarginLens/internal/query"
	"MarginLens/internal/source"
)

// Server wires the HTTP API. Oracle may be nil; the risk-curve endpoint
// then requires an explicit current price.
type Server struct {
	refresher *source.Refresher
	oracle    *oracle.Client
	logger    zerolog.Logger
	metrics   *observability.Metrics
	health    *observability.HealthChecker
	router    *mux.Router
}

// New creates the server and registers all routes.
func New(
	refresher *source.Refresher,
	oracleClient *oracle.Client,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	health *observability.HealthChecker,
) *Server {
	s := &Server{
		refresher: refresher,
		oracle:    oracleClient,
		logger:    logger,
		metrics:   metrics,
		health:    health,
	}

	r := mux.NewRouter()
	if health != nil {
		r.HandleFunc("/healthz", health.LivenessHandler).Methods(http.MethodGet)
		r.HandleFunc("/readyz", health.ReadinessHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/positions", s.instrument("/positions", s.handlePositions)).Methods(http.MethodGet)
	api.HandleFunc("/positions/{id}", s.instrument("/positions/{id}", s.handlePosition)).Methods(http.MethodGet)
	api.HandleFunc("/positions/{id}/cycles", s.instrument("/positions/{id}/cycles", s.handleCycles)).Methods(http.MethodGet)
	api.HandleFunc("/kpis", s.instrument("/kpis", s.handleKPIs)).Methods(http.MethodGet)
	api.HandleFunc("/pools", s.instrument("/pools", s.handlePools)).Methods(http.MethodGet)
	api.HandleFunc("/risk-curve", s.instrument("/risk-curve", s.handleRiskCurve)).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// instrument wraps a handler with request count and latency metrics.
func (s *Server) instrument(route string, next func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// replay recomputes all positions from the current dataset, sorted by
// account ID for a deterministic base order before any requested sort.
func (s *Server) replay() []*ledger.AccountPosition {
	start := time.Now()
	positions, stats := ledger.Replay(s.refresher.Current())

	if s.metrics != nil {
		s.metrics.ReplayDuration.Observe(time.Since(start).Seconds())
		s.metrics.PositionsReplayed.Set(float64(len(positions)))
		s.metrics.EventsSkipped.WithLabelValues("loans").Add(float64(stats.SkippedLoans))
		s.metrics.EventsSkipped.WithLabelValues("liquidations").Add(float64(stats.SkippedLiquidations))
	}

	out := make([]*ledger.AccountPosition, 0, len(positions))
	for _, pos := range positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions := s.replay()

	term := r.URL.Query().Get("search")
	field := query.SortField(r.URL.Query().Get("sort"))
	if field == "" {
		field = query.SortByLastActivity
	}
	dir := query.SortDirection(r.URL.Query().Get("dir"))
	if dir == "" {
		dir = query.SortDesc
	}

	respondWithJSON(w, http.StatusOK, query.Run(positions, term, field, dir))
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	positions, _ := ledger.Replay(s.refresher.Current())
	pos, ok := positions[id]
	if !ok {
		respondWithError(w, http.StatusNotFound, "account not found")
		return
	}
	respondWithJSON(w, http.StatusOK, pos)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	positions, _ := ledger.Replay(s.refresher.Current())
	pos, ok := positions[id]
	if !ok {
		respondWithError(w, http.StatusNotFound, "account not found")
		return
	}

	cycles := ledger.MatchCycles(pos)
	if cycles == nil {
		cycles = []ledger.LoanCycle{}
	}
	respondWithJSON(w, http.StatusOK, cycles)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	window, err := aggregate.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UnixMilli()
	kpi := aggregate.Aggregate(s.refresher.Current(), window.Start(now), now)
	respondWithJSON(w, http.StatusOK, kpi)
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UnixMilli()
	snapshots := aggregate.AggregatePools(s.refresher.Current(), now)
	if snapshots == nil {
		snapshots = []aggregate.PoolSnapshot{}
	}
	respondWithJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleRiskCurve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target, err := strconv.ParseFloat(q.Get("target"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "target price required")
		return
	}

	steps := 20
	if raw := q.Get("steps"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2 || parsed > 500 {
			respondWithError(w, http.StatusBadRequest, "steps must be an integer in [2, 500]")
			return
		}
		steps = parsed
	}

	var current float64
	switch {
	case q.Get("current") != "":
		current, err = strconv.ParseFloat(q.Get("current"), 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, errInvalidPrice.Error())
			return
		}
	case s.oracle != nil && q.Get("symbol") != "":
		current, err = s.fetchPrice(r.Context(), q.Get("symbol"))
		if err != nil {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
	default:
		respondWithError(w, http.StatusBadRequest, errNoPriceSource.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, oracle.RiskCurve(current, target, steps))
}

func (s *Server) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	price, err := s.oracle.Price(ctx, symbol)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.OracleRequests.WithLabelValues(outcome).Inc()
	}
	return price, err
}
