package models

// BudgetType represents whether a budget tracks income or expenses.
type BudgetType string

const (
	BudgetTypeIncome  BudgetType = "income"
	BudgetTypeExpense BudgetType = "expense"
)

// BudgetCategory represents a monthly budget for a named category.
// Spent is ephemeral: it is recomputed from the current transaction set
// on every read and never persisted.
type BudgetCategory struct {
	Base
	UserID   string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Category string     `gorm:"not null" json:"category"`
	Limit    float64    `gorm:"column:limit_amount;not null" json:"limit"`
	Type     BudgetType `gorm:"not null" json:"type"`
	Icon     string     `json:"icon"`
	Color    string     `json:"color"`

	Spent float64 `gorm:"-" json:"spent"`
}
