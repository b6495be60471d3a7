package transfer

import "errors"

// Service errors
var (
	ErrFraudBlocked      = errors.New("transfer blocked by fraud screening")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrPendingNotFound   = errors.New("pending transfer not found or expired")
	ErrNotPendingOwner   = errors.New("pending transfer belongs to another user")
)
