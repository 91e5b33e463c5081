// Package metrics implements the derived-metrics core: currency
// normalization, balance reconciliation, budget and business P&L
// aggregation, net worth, health scoring, and KPI evaluation.
//
// Every function in this package is a pure, synchronous mapping from
// input records to derived values. Nothing here performs I/O, retains
// state between calls, or mutates its inputs. Callers (the service
// layer) are responsible for loading and sanitizing records before
// calling in.
package metrics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rates is an exchange-rate table pivoted on a single reference
// currency: rates[code] is the number of units of code per one unit of
// the pivot. The pivot itself maps to 1.
type Rates map[string]float64

// UnknownCurrencyError indicates a currency code with no entry in the
// rate table. This must always surface to the caller: silently assuming
// parity would corrupt every total built on top of the conversion.
type UnknownCurrencyError struct {
	Code string
}

// Error implements the error interface.
func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("no exchange rate for currency %q", e.Code)
}

// Convert converts amount from one currency to another via the pivot:
// amount / rates[from] * rates[to]. Identity conversions return the
// amount unchanged so repeated conversions never accumulate float
// drift. A missing rate for either side returns *UnknownCurrencyError.
func Convert(amount float64, from, to string, rates Rates) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	fromRate, ok := rates[from]
	if !ok || fromRate == 0 {
		return 0, &UnknownCurrencyError{Code: from}
	}
	toRate, ok := rates[to]
	if !ok {
		return 0, &UnknownCurrencyError{Code: to}
	}

	return amount / fromRate * toRate, nil
}

// RoundCents rounds a monetary value to 2 decimal places using
// half-up rounding on base-10 cents. Aggregation keeps full float
// precision; rounding happens only at presentation boundaries.
func RoundCents(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded
}

// FormatAmount renders a monetary value with its currency code and
// exactly two decimals, e.g. "USD 1234.50".
func FormatAmount(amount float64, currency string) string {
	return currency + " " + decimal.NewFromFloat(amount).Round(2).StringFixed(2)
}
