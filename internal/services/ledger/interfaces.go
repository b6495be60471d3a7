package ledger

import (
	"context"

	"confia/internal/models"

	"github.com/shopspring/decimal"
)

// Service defines the ledger store interface.
type Service interface {
	// GetWallet returns the user's wallet, creating it with the configured
	// starting balance on first access.
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	// Transfer atomically moves amount from one user's wallet to another's
	// and appends the completed transaction.
	Transfer(ctx context.Context, fromUserID, toUserID uint, amount decimal.Decimal, description string, metadata models.JSON, riskScore int) (*models.Transaction, error)

	// Deposit credits a single wallet.
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transaction, error)

	// Withdraw debits a single wallet.
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transaction, error)

	// ListTransactions returns the user's ledger entries, most recent first.
	ListTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error)

	// Deactivate flags the wallet inactive. Wallets are never deleted.
	Deactivate(ctx context.Context, userID uint, reason string) error
}
