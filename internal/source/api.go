package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"MarginLens/internal/event"
	"MarginLens/internal/ingestion"
)

// Default configuration values for the API provider.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// APISource fetches the three collections from a network API serving
// JSON arrays at {base}/accounts, {base}/loans and {base}/liquidations.
type APISource struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// APIOption configures APISource.
type APIOption func(*APISource)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) APIOption {
	return func(s *APISource) {
		s.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts per collection.
func WithMaxRetries(n int) APIOption {
	return func(s *APISource) {
		s.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) APIOption {
	return func(s *APISource) {
		s.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) APIOption {
	return func(s *APISource) {
		s.client = client
	}
}

// NewAPISource creates a network API provider.
func NewAPISource(baseURL string, opts ...APIOption) *APISource {
	s := &APISource{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *APISource) Name() string {
	return "api"
}

// Fetch retrieves all three collections. Any collection failing after
// retries fails the whole fetch: the engine expects a complete dataset,
// never a partially refreshed one.
func (s *APISource) Fetch(ctx context.Context) (event.Dataset, ingestion.Stats, error) {
	var raw ingestion.RawDataset

	if err := s.getCollection(ctx, "accounts", &raw.Accounts); err != nil {
		return event.Dataset{}, ingestion.Stats{}, err
	}
	if err := s.getCollection(ctx, "loans", &raw.Loans); err != nil {
		return event.Dataset{}, ingestion.Stats{}, err
	}
	if err := s.getCollection(ctx, "liquidations", &raw.Liquidations); err != nil {
		return event.Dataset{}, ingestion.Stats{}, err
	}

	ds, stats := ingestion.ParseDataset(raw, time.Now().UnixMilli())
	return ds, stats, nil
}

func (s *APISource) getCollection(ctx context.Context, name string, out *[]json.RawMessage) error {
	url := fmt.Sprintf("%s/%s", s.baseURL, name)
	delay := s.retryDelay

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * s.backoffMult)
			if delay > s.maxDelay {
				delay = s.maxDelay
			}
		}

		if err := s.getOnce(ctx, url, out); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("fetch %s after %d attempts: %w", name, s.maxRetries+1, lastErr)
}

func (s *APISource) getOnce(ctx context.Context, url string, out *[]json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
