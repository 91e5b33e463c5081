package models

// CategoryMapping maps a budget category to a raw transaction category.
// A budget may carry several mappings; matching is exact, never substring,
// so "Car" can never absorb "Career" transactions.
type CategoryMapping struct {
	Base
	UserID              string `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetCategory      string `gorm:"not null;index" json:"budget_category"`
	TransactionCategory string `gorm:"not null" json:"transaction_category"`
}
