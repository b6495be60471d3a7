package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's balance. Wallets are created lazily on first access
// and are never deleted, only deactivated.
type Wallet struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	UserID       uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance      decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance"`
	Currency     string          `gorm:"size:3;default:'BRL'" json:"currency"`
	Active       bool            `gorm:"default:true" json:"active"`
	StatusReason string          `gorm:"default:''" json:"status_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
