package repositories

import (
	"errors"

	"confia/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateWallet     = errors.New("wallet already exists")
)

// WalletRepository defines wallet and ledger persistence. Transactions live
// here, not in a separate repository, so a balance mutation and its ledger
// entry can be committed inside one ExecuteInTransaction call.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error

	CreateTransaction(tx *models.Transaction) error
	GetTransactionByPublicID(publicID string) (*models.Transaction, error)
	// ListTransactions returns entries touching the wallet, most recent first.
	ListTransactions(walletID uint, limit int) ([]models.Transaction, error)

	// ExecuteInTransaction runs fn against a repository bound to a database
	// transaction. Any error rolls the whole unit back.
	ExecuteInTransaction(fn func(WalletRepository) error) error
}
