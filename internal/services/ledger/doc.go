/*
Package ledger owns wallet balances and the append-only transaction record.

Every balance mutation goes through this service. A transfer debits the
source, credits the destination and appends the ledger entry inside a single
database transaction, so readers never observe a half-applied transfer.
On top of the database transaction, mutations are serialized per wallet with
in-process locks; operations touching two wallets acquire both locks in
ascending id order, which makes opposite-direction transfers deadlock free.

Usage:

	svc := ledger.NewService(repo, cache, ledger.Config{}, nil)

	w, err := svc.GetWallet(ctx, userID)
	txn, err := svc.Transfer(ctx, fromID, toID, amount, "rent", nil, riskScore)
	txn, err = svc.Deposit(ctx, userID, amount, "top-up")
	txn, err = svc.Withdraw(ctx, userID, amount, "cash out")

Error Handling:

The service returns specific errors for different scenarios:
- ErrInvalidAmount: amount is zero or negative
- ErrInsufficientFunds: source balance below the requested amount
- ErrSelfTransfer: source and destination are the same user
- ErrWalletInactive: wallet has been deactivated
*/
package ledger
