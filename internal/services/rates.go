package services

import (
	"context"
	"errors"

	apperrors "finsight/internal/errors"
	"finsight/internal/fxrates"
	"finsight/internal/metrics"
)

// loadRates fetches the current rate table and maps provider failures
// onto the API error surface.
func loadRates(ctx context.Context, provider RatesProvider) (metrics.Rates, error) {
	rates, err := provider.Rates(ctx)
	if err != nil {
		var unavailable *fxrates.ErrRatesUnavailable
		if errors.As(err, &unavailable) {
			return nil, apperrors.Wrap(apperrors.ErrRatesUnavailable, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rates, nil
}

// currencyErr converts an aggregation failure into an AppError. Unknown
// currencies surface as 422s so a bad row never silently passes at
// parity.
func currencyErr(err error) error {
	var unknown *metrics.UnknownCurrencyError
	if errors.As(err, &unknown) {
		return apperrors.WithMessage(apperrors.ErrUnknownCurrency, "No exchange rate for currency "+unknown.Code)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
