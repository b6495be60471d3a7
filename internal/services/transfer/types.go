package transfer

import (
	"context"
	"time"

	"confia/internal/services/risk"

	"confia/internal/models"

	"github.com/shopspring/decimal"
)

// Transfer states reported to clients.
const (
	StateStepUpRequired = "step_up_required"
	StateCommitted      = "committed"
	StateBlocked        = "blocked"
	StateAbandoned      = "abandoned"
)

const pendingKeyPrefix = "transfer:pending:"

// Request describes a transfer the caller wants to make. Latitude,
// Longitude and DeviceFingerprint are optional context for the risk
// evaluation.
type Request struct {
	FromUserID        uint
	ToUserID          uint
	Amount            decimal.Decimal
	Description       string
	Latitude          *float64
	Longitude         *float64
	DeviceFingerprint string
}

// Result is the outcome of an Initiate or Confirm call. Transaction is set
// only when State is committed; PendingID only when step-up is required.
type Result struct {
	State       string              `json:"state"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Assessment  *risk.Assessment    `json:"risk_assessment"`
	PendingID   string              `json:"pending_id,omitempty"`
}

// pendingTransfer is the step-up parking record. It lives in the cache
// under a TTL; an expired record means the transfer was abandoned.
type pendingTransfer struct {
	FromUserID  uint             `json:"from_user_id"`
	ToUserID    uint             `json:"to_user_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Metadata    models.JSON      `json:"metadata"`
	Assessment  *risk.Assessment `json:"assessment"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PendingStore is the subset of the cache service used to park step-up
// transfers.
type PendingStore interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Config holds orchestrator knobs.
type Config struct {
	// StepUpTTL is how long a step-up transfer stays confirmable.
	StepUpTTL time.Duration
	// HistoryWindow is how many recent ledger entries feed the risk
	// context derivation.
	HistoryWindow int
}

// Service orchestrates risk-gated transfers between wallets.
type Service interface {
	// Initiate runs the risk gate and either commits the transfer, parks
	// it pending step-up verification, or blocks it.
	Initiate(ctx context.Context, req Request) (*Result, error)

	// Confirm completes a parked transfer after step-up verification. Only
	// the initiator may confirm.
	Confirm(ctx context.Context, userID uint, pendingID string) (*Result, error)

	// Abandon discards a parked transfer without moving funds.
	Abandon(ctx context.Context, userID uint, pendingID string) error

	// Wait blocks until all in-flight post-commit work (score updates,
	// event publishing) has drained. Called on shutdown.
	Wait()
}
