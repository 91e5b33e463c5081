package models

import "time"

// Investment represents a holding of an investment asset. CurrentValue
// tracks Quantity * CurrentPrice by convention; price updates are manual.
type Investment struct {
	Base
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID    *string   `gorm:"type:uuid" json:"account_id,omitempty"`
	Symbol       string    `gorm:"not null" json:"symbol"`
	Name         string    `json:"name"`
	Quantity     float64   `gorm:"not null" json:"quantity"`
	CostBasis    float64   `gorm:"not null" json:"cost_basis"`
	CurrentPrice float64   `gorm:"not null" json:"current_price"`
	CurrentValue float64   `gorm:"not null" json:"current_value"`
	Currency     string    `gorm:"not null;default:'USD'" json:"currency"`
	LastUpdated  time.Time `json:"last_updated"`
}

// UnrealizedPnL returns the holding's unrealized gain or loss.
func (i *Investment) UnrealizedPnL() float64 {
	return i.CurrentValue - i.CostBasis
}
