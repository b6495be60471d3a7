package ledger

import (
	"context"
	"errors"
	"fmt"

	"confia/internal/models"
	"confia/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo    repositories.WalletRepository
	cache   Cache
	config  Config
	metrics MetricsCollector
	locks   *walletLocks
}

// NewService creates a new ledger service.
func NewService(repo repositories.WalletRepository, cache Cache, config Config, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}

	if config.StartingBalance.IsZero() {
		config.StartingBalance, _ = decimal.NewFromString(DefaultStartingBalance)
	}
	if config.Currency == "" {
		config.Currency = DefaultCurrency
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		config:  config,
		metrics: metrics,
		locks:   newWalletLocks(),
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	// Try cache first
	if wallet, err := s.cache.GetWallet(ctx, userID); err == nil {
		return wallet, nil
	}

	release := s.locks.acquire(userID)
	defer release()

	wallet, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheWallet(ctx, wallet); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to cache wallet")
	}
	return wallet, nil
}

func (s *service) Transfer(ctx context.Context, fromUserID, toUserID uint, amount decimal.Decimal, description string, metadata models.JSON, riskScore int) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, ErrSelfTransfer
	}

	release := s.locks.acquire(fromUserID, toUserID)
	defer release()

	from, err := s.getOrCreate(fromUserID)
	if err != nil {
		return nil, err
	}
	to, err := s.getOrCreate(toUserID)
	if err != nil {
		return nil, err
	}

	if !from.Active || !to.Active {
		return nil, ErrWalletInactive
	}
	if from.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	txn := &models.Transaction{
		PublicID:     uuid.NewString(),
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       amount,
		Description:  description,
		Kind:         models.TransactionKindTransfer,
		Status:       models.TransactionStatusCompleted,
		RiskScore:    riskScore,
		Metadata:     metadata,
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		from.Balance = from.Balance.Sub(amount)
		if err := tx.Update(from); err != nil {
			return err
		}
		to.Balance = to.Balance.Add(amount)
		if err := tx.Update(to); err != nil {
			return err
		}
		return tx.CreateTransaction(txn)
	})
	if err != nil {
		s.metrics.RecordError("transfer", err.Error())
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	s.invalidate(ctx, fromUserID, toUserID)
	s.metrics.RecordTransaction(models.TransactionKindTransfer, amount)

	return txn, nil
}

func (s *service) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	return s.mutateSingle(ctx, userID, amount, models.TransactionKindDeposit, description)
}

func (s *service) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	return s.mutateSingle(ctx, userID, amount, models.TransactionKindWithdrawal, description)
}

func (s *service) mutateSingle(ctx context.Context, userID uint, amount decimal.Decimal, kind, description string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	release := s.locks.acquire(userID)
	defer release()

	wallet, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if !wallet.Active {
		return nil, ErrWalletInactive
	}

	txn := &models.Transaction{
		PublicID:    uuid.NewString(),
		Amount:      amount,
		Description: description,
		Kind:        kind,
		Status:      models.TransactionStatusCompleted,
	}

	switch kind {
	case models.TransactionKindDeposit:
		txn.ToWalletID = wallet.ID
	case models.TransactionKindWithdrawal:
		if wallet.Balance.LessThan(amount) {
			return nil, ErrInsufficientFunds
		}
		txn.FromWalletID = wallet.ID
	default:
		return nil, fmt.Errorf("unsupported transaction kind %q", kind)
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		if kind == models.TransactionKindDeposit {
			wallet.Balance = wallet.Balance.Add(amount)
		} else {
			wallet.Balance = wallet.Balance.Sub(amount)
		}
		if err := tx.Update(wallet); err != nil {
			return err
		}
		return tx.CreateTransaction(txn)
	})
	if err != nil {
		s.metrics.RecordError(kind, err.Error())
		return nil, fmt.Errorf("%s failed: %w", kind, err)
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordTransaction(kind, amount)

	return txn, nil
}

func (s *service) ListTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(wallet.ID, limit)
}

func (s *service) Deactivate(ctx context.Context, userID uint, reason string) error {
	release := s.locks.acquire(userID)
	defer release()

	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return ErrWalletNotFound
		}
		return err
	}

	wallet.Active = false
	wallet.StatusReason = reason
	if err := s.repo.Update(wallet); err != nil {
		return fmt.Errorf("failed to deactivate wallet: %w", err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// getOrCreate must be called with the user's lock held.
func (s *service) getOrCreate(userID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetByUserID(userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, err
	}

	wallet = &models.Wallet{
		UserID:   userID,
		Balance:  s.config.StartingBalance,
		Currency: s.config.Currency,
		Active:   true,
	}
	if err := s.repo.Create(wallet); err != nil {
		// A concurrent request may have won the race; the unique index on
		// user_id makes the second insert fail, so re-read.
		if existing, getErr := s.repo.GetByUserID(userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return wallet, nil
}

func (s *service) invalidate(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		if err := s.cache.InvalidateWallet(ctx, id); err != nil {
			logrus.WithError(err).WithField("user_id", id).Warn("failed to invalidate wallet cache")
		}
	}
}
