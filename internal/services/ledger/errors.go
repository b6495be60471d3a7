package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrWalletInactive    = errors.New("wallet is inactive")
	ErrWalletNotFound    = errors.New("wallet not found")
)
