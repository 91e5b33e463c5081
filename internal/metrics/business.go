package metrics

import "finsight/internal/models"

// DateWindow is an inclusive range of ISO YYYY-MM-DD calendar days.
// ISO dates compare lexicographically, so containment is a plain
// string comparison.
type DateWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether the given ISO date falls inside the window.
func (w DateWindow) Contains(date string) bool {
	return date >= w.Start && date <= w.End
}

// ComputeEntityMetrics recomputes the ephemeral Metrics field for every
// business entity from the transactions tagged with its ID. With a nil
// window the rollup is all-time; the report engine passes an explicit
// window for period-scoped P&L. Returns a new slice, inputs untouched.
//
// Margin resolves to 0 when revenue is 0. Trend is left at 0 here:
// period-over-period comparison belongs to the report engine.
func ComputeEntityMetrics(
	entities []models.BusinessEntity,
	transactions []models.Transaction,
	baseCurrency string,
	rates Rates,
	window *DateWindow,
) ([]models.BusinessEntity, error) {
	out := make([]models.BusinessEntity, len(entities))
	copy(out, entities)

	for i := range out {
		entity := &out[i]

		var revenue, expenses float64
		for j := range transactions {
			tx := &transactions[j]
			if tx.BusinessID == nil || *tx.BusinessID != entity.ID {
				continue
			}
			if window != nil && !window.Contains(tx.Date) {
				continue
			}

			amount, err := Convert(tx.NumericAmount, tx.Currency, baseCurrency, rates)
			if err != nil {
				return nil, err
			}

			switch tx.Type {
			case models.TransactionTypeCredit:
				revenue += amount
			case models.TransactionTypeDebit:
				expenses += amount
			}
		}

		profit := revenue - expenses
		var margin float64
		if revenue > 0 {
			margin = profit / revenue * 100
		}

		entity.Metrics = models.EntityMetrics{
			Revenue:  revenue,
			Expenses: expenses,
			Profit:   profit,
			Margin:   margin,
		}
	}

	return out, nil
}
