package metrics

import (
	"strings"
	"time"

	"finsight/internal/models"
)

// CategoryMap maps a budget category name to the raw transaction
// categories that count toward it. Matching is exact: substring
// matching would produce false positives ("Car" matching "Career").
// The budget's own category name always matches implicitly.
type CategoryMap map[string][]string

// ComputeSpent recomputes the ephemeral Spent field for every budget
// from the transactions of the calendar month containing asOf. It
// returns a new slice; the input budgets are never mutated.
//
// Sign convention: for expense budgets debits add to spend and credits
// subtract (refunds reduce spend); income budgets mirror that. Amounts
// are normalized to baseCurrency before summing, and the final Spent is
// clamped at zero.
func ComputeSpent(
	budgets []models.BudgetCategory,
	transactions []models.Transaction,
	baseCurrency string,
	rates Rates,
	asOf time.Time,
	categories CategoryMap,
) ([]models.BudgetCategory, error) {
	monthPrefix := asOf.Format("2006-01")

	out := make([]models.BudgetCategory, len(budgets))
	copy(out, budgets)

	for i := range out {
		budget := &out[i]

		matched := map[string]bool{budget.Category: true}
		for _, raw := range categories[budget.Category] {
			matched[raw] = true
		}

		var spent float64
		for j := range transactions {
			tx := &transactions[j]
			if tx.ExcludedFromRollups() || !matched[tx.Category] {
				continue
			}
			if !strings.HasPrefix(tx.Date, monthPrefix) {
				continue
			}

			amount, err := Convert(tx.NumericAmount, tx.Currency, baseCurrency, rates)
			if err != nil {
				return nil, err
			}

			switch budget.Type {
			case models.BudgetTypeExpense:
				if tx.Type == models.TransactionTypeDebit {
					spent += amount
				} else {
					spent -= amount
				}
			case models.BudgetTypeIncome:
				if tx.Type == models.TransactionTypeCredit {
					spent += amount
				} else {
					spent -= amount
				}
			}
		}

		if spent < 0 {
			spent = 0
		}
		budget.Spent = spent
	}

	return out, nil
}
