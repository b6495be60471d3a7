package models

import "time"

// Alert severities
const (
	AlertSeverityLow      = "low"
	AlertSeverityMedium   = "medium"
	AlertSeverityHigh     = "high"
	AlertSeverityCritical = "critical"
)

// Alert types
const (
	AlertTypeHighRiskTransaction = "high_risk_transaction"
)

// FraudAlert records a risk evaluation that crossed the alert threshold.
// Alerts are never auto-resolved; resolution is an explicit operation.
type FraudAlert struct {
	ID            uint       `gorm:"primarykey" json:"-"`
	PublicID      string     `gorm:"uniqueIndex;size:36;not null" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	TransactionID *uint      `json:"transaction_id,omitempty"`
	Type          string     `gorm:"not null" json:"type"`
	Severity      string     `gorm:"not null" json:"severity"`
	Description   string     `json:"description"`
	Resolved      bool       `gorm:"default:false" json:"resolved"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}
