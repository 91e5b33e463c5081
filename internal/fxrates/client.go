// Package fxrates fetches and caches an exchange-rate table pivoted on
// a base currency. Rates come from a frankfurter-style HTTP endpoint
// and are cached in memory with a TTL; crypto tickers, which the fiat
// endpoint does not know, are merged from a static override table.
package fxrates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"finsight/internal/logger"
	"finsight/internal/metrics"
)

// ErrRatesUnavailable is returned when no rate table can be produced:
// the fetch failed and there is nothing cached to fall back on.
type ErrRatesUnavailable struct {
	Err error
}

// Error implements the error interface.
func (e *ErrRatesUnavailable) Error() string {
	return fmt.Sprintf("exchange rates unavailable: %v", e.Err)
}

// Unwrap returns the underlying fetch error.
func (e *ErrRatesUnavailable) Unwrap() error { return e.Err }

// rateResponse matches the frankfurter.app response shape.
type rateResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Client fetches and caches exchange rates. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	base       string
	ttl        time.Duration

	// cryptoPrices maps ticker -> price in base currency (e.g. BTC -> 65000).
	cryptoPrices map[string]float64

	mu        sync.RWMutex
	rates     metrics.Rates
	fetchedAt time.Time
}

// NewClient creates a rate client pivoted on baseCurrency. cryptoPrices
// may be nil.
func NewClient(httpClient *http.Client, baseURL, baseCurrency string, ttl time.Duration, cryptoPrices map[string]float64) *Client {
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		base:         strings.ToUpper(baseCurrency),
		ttl:          ttl,
		cryptoPrices: cryptoPrices,
	}
}

// Base returns the pivot currency code.
func (c *Client) Base() string { return c.base }

// Rates returns the current rate table, fetching if the cache is empty
// or expired. On fetch failure a stale cache is served with a warning;
// with no cache at all the caller gets *ErrRatesUnavailable, so metric
// calculations fail loudly instead of silently assuming parity.
func (c *Client) Rates(ctx context.Context) (metrics.Rates, error) {
	c.mu.RLock()
	cached := c.rates
	age := time.Since(c.fetchedAt)
	c.mu.RUnlock()

	if cached != nil && age < c.ttl {
		return cached, nil
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		if cached != nil {
			logger.Get().Warnw("serving stale exchange rates after fetch failure",
				"age", age.String(), "error", err.Error())
			return cached, nil
		}
		return nil, &ErrRatesUnavailable{Err: err}
	}

	c.mu.Lock()
	c.rates = fetched
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return fetched, nil
}

// Invalidate drops the cached table so the next call re-fetches.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.rates = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// fetch retrieves the rate table and merges crypto overrides. The
// resulting table maps each code to units-per-one-base, with the base
// itself at 1.
func (c *Client) fetch(ctx context.Context) (metrics.Rates, error) {
	url := fmt.Sprintf("%s/latest?from=%s", c.baseURL, c.base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request: unexpected status %d", resp.StatusCode)
	}

	var payload rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding rates response: %w", err)
	}

	rates := metrics.Rates{c.base: 1}
	for code, rate := range payload.Rates {
		if rate <= 0 {
			continue
		}
		rates[strings.ToUpper(code)] = rate
	}

	// Crypto overrides are quoted as price-in-base (1 BTC = 65000 USD);
	// the table wants units-per-base, so invert.
	for ticker, price := range c.cryptoPrices {
		if price <= 0 {
			continue
		}
		rates[strings.ToUpper(ticker)] = 1 / price
	}

	return rates, nil
}
