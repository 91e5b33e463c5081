package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCrypto     AccountType = "crypto"
	AccountTypeBusiness   AccountType = "business"
)

// IsDebt returns true for account types whose balance represents a liability.
func (t AccountType) IsDebt() bool {
	return t == AccountTypeCredit
}

// Account represents a financial account in the system.
// Balance is signed: credit accounts carry negative balances for
// outstanding debt. Currency is an ISO 4217 code or a registered
// crypto ticker (e.g. BTC).
type Account struct {
	Base
	UserID         string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string      `gorm:"not null" json:"name"`
	Type           AccountType `gorm:"not null" json:"type"`
	Description    string      `json:"description"`
	Balance        float64     `gorm:"not null;default:0" json:"balance"`
	InitialBalance float64     `gorm:"not null;default:0" json:"initial_balance"`
	Currency       string      `gorm:"not null;default:'USD'" json:"currency"`
	IsActive       bool        `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
