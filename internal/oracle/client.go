// Package oracle fetches asset prices and derives an illustrative
// liquidation-risk curve for the presentation layer. Oracle data never
// feeds the ledger reconstruction.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single price request.
const DefaultTimeout = 10 * time.Second

// Client fetches current prices from an HTTP price feed serving
// GET {base}/price?symbol=SOL as {"symbol": "...", "price": 123.45}.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a price oracle client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type priceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Price fetches the current price for one symbol.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/price?symbol=%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch price for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("price feed returned status %d for %s", resp.StatusCode, symbol)
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}
	if pr.Price <= 0 {
		return 0, fmt.Errorf("price feed returned non-positive price %v for %s", pr.Price, symbol)
	}
	return pr.Price, nil
}
