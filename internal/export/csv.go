// Package export renders transaction lists as CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"finsight/internal/metrics"
	"finsight/internal/models"
)

// csvHeader is the fixed column set for transaction exports.
var csvHeader = []string{"Date", "Merchant", "Category", "Amount", "Type", "Account", "Notes", "Recurring"}

// WriteTransactionsCSV streams the given transactions as CSV. Amounts
// are rounded to cents at this presentation boundary; accountNames maps
// account IDs to display names (unknown IDs fall back to the raw ID).
// encoding/csv handles quoting, so free-text fields are safe.
func WriteTransactionsCSV(w io.Writer, transactions []models.Transaction, accountNames map[string]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range transactions {
		tx := &transactions[i]

		account := accountNames[tx.AccountID]
		if account == "" {
			account = tx.AccountID
		}

		recurring := "no"
		if tx.IsRecurring {
			recurring = "yes"
			if tx.RecurringInterval != "" {
				recurring = tx.RecurringInterval
			}
		}

		record := []string{
			tx.Date,
			tx.Merchant,
			tx.Category,
			fmt.Sprintf("%.2f", metrics.RoundCents(tx.NumericAmount)),
			string(tx.Type),
			account,
			tx.Notes,
			recurring,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
