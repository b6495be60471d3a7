package ledger

import (
	"context"
	"sync"
	"testing"

	"confia/internal/models"
	"confia/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memWalletRepo is an in-memory WalletRepository safe for concurrent use.
type memWalletRepo struct {
	mu           sync.Mutex
	nextID       uint
	wallets      map[uint]*models.Wallet
	transactions []models.Transaction
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{
		nextID:  1,
		wallets: make(map[uint]*models.Wallet),
	}
}

func (r *memWalletRepo) Create(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == wallet.UserID {
			return repositories.ErrDuplicateWallet
		}
	}
	wallet.ID = r.nextID
	r.nextID++
	copied := *wallet
	r.wallets[wallet.ID] = &copied
	return nil
}

func (r *memWalletRepo) GetByID(id uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *memWalletRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID == userID {
			copied := *w
			return &copied, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (r *memWalletRepo) Update(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[wallet.ID]; !ok {
		return repositories.ErrWalletNotFound
	}
	copied := *wallet
	r.wallets[wallet.ID] = &copied
	return nil
}

func (r *memWalletRepo) CreateTransaction(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = uint(len(r.transactions) + 1)
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *memWalletRepo) GetTransactionByPublicID(publicID string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.transactions {
		if r.transactions[i].PublicID == publicID {
			copied := r.transactions[i]
			return &copied, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *memWalletRepo) ListTransactions(walletID uint, limit int) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for i := len(r.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		t := r.transactions[i]
		if t.FromWalletID == walletID || t.ToWalletID == walletID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memWalletRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	return fn(r)
}

// nopCache always misses.
type nopCache struct{}

func (nopCache) GetWallet(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}
func (nopCache) CacheWallet(context.Context, *models.Wallet) error   { return nil }
func (nopCache) InvalidateWallet(context.Context, uint) error        { return nil }

func newTestService(repo repositories.WalletRepository) Service {
	return NewService(repo, nopCache{}, Config{}, nil)
}

func TestGetWallet_CreatesWithStartingBalance(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	wallet, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), wallet.UserID)
	assert.True(t, wallet.Active)
	assert.Equal(t, DefaultCurrency, wallet.Currency)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString(DefaultStartingBalance)))

	again, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name    string
		from    uint
		to      uint
		amount  string
		wantErr error
	}{
		{name: "happy path", from: 1, to: 2, amount: "250.50"},
		{name: "full balance", from: 1, to: 2, amount: "1000"},
		{name: "insufficient funds", from: 1, to: 2, amount: "1000.01", wantErr: ErrInsufficientFunds},
		{name: "zero amount", from: 1, to: 2, amount: "0", wantErr: ErrInvalidAmount},
		{name: "negative amount", from: 1, to: 2, amount: "-5", wantErr: ErrInvalidAmount},
		{name: "self transfer", from: 1, to: 1, amount: "10", wantErr: ErrSelfTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemWalletRepo()
			svc := newTestService(repo)
			amount := decimal.RequireFromString(tt.amount)

			txn, err := svc.Transfer(context.Background(), tt.from, tt.to, amount, "test", nil, 10)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
			assert.Equal(t, models.TransactionKindTransfer, txn.Kind)
			assert.NotEmpty(t, txn.PublicID)

			from, err := svc.GetWallet(context.Background(), tt.from)
			require.NoError(t, err)
			to, err := svc.GetWallet(context.Background(), tt.to)
			require.NoError(t, err)

			start := decimal.RequireFromString(DefaultStartingBalance)
			assert.True(t, from.Balance.Equal(start.Sub(amount)), "sender balance %s", from.Balance)
			assert.True(t, to.Balance.Equal(start.Add(amount)), "recipient balance %s", to.Balance)
		})
	}
}

func TestTransfer_AtomicOnFailure(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	// Fails before any balance change, so neither wallet moves and no
	// ledger entry is written.
	_, err := svc.Transfer(context.Background(), 1, 2, decimal.RequireFromString("2000"), "too much", nil, 10)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	from, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, from.Balance.Equal(decimal.RequireFromString(DefaultStartingBalance)))
	assert.Empty(t, repo.transactions)
}

func TestTransfer_InactiveWallet(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	_, err := svc.GetWallet(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), 2, "compliance hold"))

	_, err = svc.Transfer(context.Background(), 1, 2, decimal.RequireFromString("10"), "", nil, 10)
	assert.ErrorIs(t, err, ErrWalletInactive)
}

func TestTransfer_Concurrent(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	// Warm both wallets.
	_, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.GetWallet(context.Background(), 2)
	require.NoError(t, err)

	const rounds = 50
	amount := decimal.RequireFromString("1")

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Transfer(context.Background(), 1, 2, amount, "", nil, 10)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Transfer(context.Background(), 2, 1, amount, "", nil, 10)
		}()
	}
	wg.Wait()

	from, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	to, err := svc.GetWallet(context.Background(), 2)
	require.NoError(t, err)

	start := decimal.RequireFromString(DefaultStartingBalance)
	total := from.Balance.Add(to.Balance)
	assert.True(t, total.Equal(start.Mul(decimal.NewFromInt(2))), "money conserved, got %s", total)
}

func TestDepositAndWithdraw(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	txn, err := svc.Deposit(context.Background(), 1, decimal.RequireFromString("500"), "pix in")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionKindDeposit, txn.Kind)

	_, err = svc.Withdraw(context.Background(), 1, decimal.RequireFromString("600"), "pix out")
	require.NoError(t, err)

	wallet, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	want := decimal.RequireFromString(DefaultStartingBalance).Sub(decimal.RequireFromString("100"))
	assert.True(t, wallet.Balance.Equal(want), "got %s", wallet.Balance)

	_, err = svc.Withdraw(context.Background(), 1, decimal.RequireFromString("10000"), "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestListTransactions_LimitClamped(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	for i := 0; i < 5; i++ {
		_, err := svc.Deposit(context.Background(), 1, decimal.RequireFromString("1"), "")
		require.NoError(t, err)
	}

	txns, err := svc.ListTransactions(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	// Zero falls back to the default, oversized clamps to the max.
	txns, err = svc.ListTransactions(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 5)

	_, err = svc.ListTransactions(context.Background(), 1, MaxHistoryLimit+1)
	require.NoError(t, err)
}

func TestDeactivate_UnknownWallet(t *testing.T) {
	repo := newMemWalletRepo()
	svc := newTestService(repo)

	err := svc.Deactivate(context.Background(), 42, "test")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}
