package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds
const (
	TransactionKindTransfer   = "transfer"
	TransactionKindDeposit    = "deposit"
	TransactionKindWithdrawal = "withdrawal"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
)

// Metadata keys recorded on ledger entries.
const (
	MetadataKeyLatitude    = "latitude"
	MetadataKeyLongitude   = "longitude"
	MetadataKeyDeviceID    = "device_fingerprint"
	MetadataKeyRiskFactors = "risk_factors"
)

// Transaction is an append-only ledger entry. Completed transactions are
// immutable; the row is written once, inside the same database transaction
// as the balance mutations it describes.
type Transaction struct {
	ID           uint            `gorm:"primarykey" json:"-"`
	PublicID     string          `gorm:"uniqueIndex;size:36;not null" json:"id"`
	FromWalletID uint            `gorm:"index" json:"from_wallet_id,omitempty"`
	ToWalletID   uint            `gorm:"index" json:"to_wallet_id,omitempty"`
	Amount       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Description  string          `json:"description"`
	Kind         string          `gorm:"not null" json:"kind"`
	Status       string          `gorm:"not null;default:'pending'" json:"status"`
	RiskScore    int             `gorm:"default:0" json:"risk_score"`
	Metadata     JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
