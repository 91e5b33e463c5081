package models

// TransactionType carries the direction of a transaction. Amounts are
// stored as unsigned magnitudes; the sign never lives in NumericAmount.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Categories excluded from budget and spend rollups.
const (
	CategoryTransfer   = "Transfer"
	CategoryAdjustment = "Adjustment"
)

// Transaction represents a financial transaction in the system.
// Date is a calendar day stored as ISO YYYY-MM-DD, so date strings
// compare lexicographically for range filters.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID     string          `gorm:"type:uuid;not null;index" json:"account_id"`
	BusinessID    *string         `gorm:"type:uuid;index" json:"business_id,omitempty"`
	Type          TransactionType `gorm:"not null" json:"type"`
	NumericAmount float64         `gorm:"not null" json:"numeric_amount"`
	Currency      string          `gorm:"not null;default:'USD'" json:"currency"`
	Date          string          `gorm:"type:varchar(10);not null;index" json:"date"`
	Category      string          `gorm:"not null;default:''" json:"category"`
	Merchant      string          `json:"merchant"`
	Notes         string          `json:"notes"`

	// Recurring transactions
	IsRecurring       bool   `gorm:"default:false" json:"is_recurring"`
	RecurringInterval string `json:"recurring_interval,omitempty"`

	// Relationships
	Account  Account         `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Business *BusinessEntity `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
}

// ExcludedFromRollups reports whether the transaction's category is one
// of the bookkeeping categories that never count toward budgets or spend.
func (t *Transaction) ExcludedFromRollups() bool {
	return t.Category == CategoryTransfer || t.Category == CategoryAdjustment
}
