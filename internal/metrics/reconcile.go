package metrics

import "finsight/internal/models"

// Reconcile replays an account's transactions against its initial
// balance: credits add, debits subtract. The fold is commutative, so
// the result is independent of transaction order.
//
// This is an audit utility for detecting drift between the stored
// balance and the replayed one; the stored Balance remains the source
// of truth.
func Reconcile(account *models.Account, transactions []models.Transaction) float64 {
	balance := account.InitialBalance
	for i := range transactions {
		tx := &transactions[i]
		if tx.AccountID != account.ID {
			continue
		}
		switch tx.Type {
		case models.TransactionTypeCredit:
			balance += tx.NumericAmount
		case models.TransactionTypeDebit:
			balance -= tx.NumericAmount
		}
	}
	return balance
}
