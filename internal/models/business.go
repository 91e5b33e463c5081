package models

// EntityType represents the legal/organizational shape of a business entity.
type EntityType string

const (
	EntityTypeSoleProp    EntityType = "sole_proprietorship"
	EntityTypeLLC         EntityType = "llc"
	EntityTypeCorporation EntityType = "corporation"
	EntityTypePartnership EntityType = "partnership"
)

// EntityMetrics holds derived P&L figures for a business entity.
// Recomputed per request from the transaction set; never persisted.
type EntityMetrics struct {
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
	Trend    float64 `json:"trend"`
}

// BusinessEntity represents a business whose transactions are tracked
// alongside personal finances. Entities may nest via ParentID.
type BusinessEntity struct {
	Base
	UserID   string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string     `gorm:"not null" json:"name"`
	Type     EntityType `gorm:"not null" json:"type"`
	ParentID *string    `gorm:"type:uuid" json:"parent_id,omitempty"`

	Metrics EntityMetrics `gorm:"-" json:"metrics"`

	// Relationships
	Parent   *BusinessEntity  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []BusinessEntity `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
