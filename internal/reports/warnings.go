package reports

import (
	"fmt"
	"sort"
	"strings"

	"finsight/internal/metrics"
	"finsight/internal/models"
)

// DefaultChecks returns the standard data-quality checks applied to
// business-scope reports.
func DefaultChecks() []WarningCheck {
	return []WarningCheck{
		CheckMissingCategories,
		CheckUnknownCurrencies,
		CheckUntaggedBusinessActivity,
	}
}

// CheckMissingCategories flags transactions with no category, which
// silently fall out of every budget rollup.
func CheckMissingCategories(transactions []models.Transaction, _ metrics.Rates) []string {
	count := 0
	for i := range transactions {
		if strings.TrimSpace(transactions[i].Category) == "" {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d transaction(s) missing a category", count)}
}

// CheckUnknownCurrencies flags currency codes with no rate-table entry.
// Totals including these transactions would fail to normalize.
func CheckUnknownCurrencies(transactions []models.Transaction, rates metrics.Rates) []string {
	unknown := map[string]bool{}
	for i := range transactions {
		code := strings.ToUpper(transactions[i].Currency)
		if _, ok := rates[code]; !ok {
			unknown[code] = true
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	codes := make([]string, 0, len(unknown))
	for code := range unknown {
		codes = append(codes, code)
	}
	// Deterministic output regardless of map iteration order.
	sort.Strings(codes)
	return []string{fmt.Sprintf("no exchange rate for currency code(s): %s", strings.Join(codes, ", "))}
}

// CheckUntaggedBusinessActivity flags transactions that look like
// business activity (a business-sounding category) but carry no
// business_id, so they are invisible to entity P&L.
func CheckUntaggedBusinessActivity(transactions []models.Transaction, _ metrics.Rates) []string {
	businessCategories := map[string]bool{
		"Sales": true, "Consulting": true, "Payroll": true, "Invoices": true,
	}
	count := 0
	for i := range transactions {
		if transactions[i].BusinessID == nil && businessCategories[transactions[i].Category] {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d transaction(s) in business categories not linked to a business entity", count)}
}
