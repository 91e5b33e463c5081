package models

// BusinessMetric is a user-configured KPI definition plus its latest raw
// value. Thresholds are optional: a metric with no target and no warning
// is treated as unconfigured and never drags down the aggregate score.
type BusinessMetric struct {
	Base
	UserID         string   `gorm:"type:uuid;not null;index" json:"user_id"`
	BusinessID     *string  `gorm:"type:uuid;index" json:"business_id,omitempty"`
	MetricID       string   `gorm:"not null;index" json:"metric_id"`
	Name           string   `gorm:"not null" json:"name"`
	Unit           string   `json:"unit"`
	Value          float64  `gorm:"not null;default:0" json:"value"`
	Target         *float64 `json:"target,omitempty"`
	Warning        *float64 `json:"warning,omitempty"`
	Critical       *float64 `json:"critical,omitempty"`
	HigherIsBetter bool     `gorm:"default:true" json:"higher_is_better"`
	Weight         float64  `gorm:"not null;default:1" json:"weight"`
	IsActive       bool     `gorm:"default:true" json:"is_active"`
}
