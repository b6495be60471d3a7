package ledger

import (
	"context"

	"confia/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds ledger behaviour knobs.
type Config struct {
	// StartingBalance is credited to a wallet on first access.
	StartingBalance decimal.Decimal
	// Currency assigned to newly created wallets.
	Currency string
}

// Cache is the subset of the cache service the ledger needs.
type Cache interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

// MetricsCollector records ledger operation outcomes.
type MetricsCollector interface {
	RecordTransaction(kind string, amount decimal.Decimal)
	RecordError(operation, errType string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransaction(string, decimal.Decimal) {}
func (NoopMetricsCollector) RecordError(string, string)                {}
