package services

import (
	"context"
	"errors"

	"finsight/internal/fxrates"
	"finsight/internal/metrics"
)

// stubRates is a fixed-table RatesProvider for tests.
type stubRates struct {
	rates metrics.Rates
	fail  bool
}

func (s *stubRates) Rates(ctx context.Context) (metrics.Rates, error) {
	if s.fail {
		return nil, &fxrates.ErrRatesUnavailable{Err: errors.New("upstream down")}
	}
	return s.rates, nil
}

func (s *stubRates) Base() string { return "USD" }

func usdRates() *stubRates {
	return &stubRates{rates: metrics.Rates{"USD": 1, "EUR": 0.85, "GBP": 0.75}}
}
