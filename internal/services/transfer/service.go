// Package transfer orchestrates wallet-to-wallet transfers through the
// fraud gate: evaluate, then commit, park for step-up verification, or
// block. Funds only move on commit.
package transfer

import (
	"context"
	"errors"
	"sync"
	"time"

	"confia/internal/events"
	"confia/internal/models"
	"confia/internal/repositories"
	"confia/internal/services/ledger"
	"confia/internal/services/risk"
	"confia/internal/services/score"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	ledger    ledger.Service
	risk      risk.Service
	scores    score.Service
	users     repositories.UserRepository
	pending   PendingStore
	publisher events.Publisher
	config    Config

	wg sync.WaitGroup
}

// NewService creates the transfer orchestrator.
func NewService(ledgerSvc ledger.Service, riskSvc risk.Service, scoreSvc score.Service, users repositories.UserRepository, pending PendingStore, publisher events.Publisher, config Config) Service {
	if ledgerSvc == nil || riskSvc == nil || scoreSvc == nil {
		panic("ledger, risk and score services are required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if pending == nil {
		panic("pending store is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if config.StepUpTTL == 0 {
		config.StepUpTTL = 5 * time.Minute
	}
	if config.HistoryWindow == 0 {
		config.HistoryWindow = ledger.DefaultHistoryLimit
	}

	return &service{
		ledger:    ledgerSvc,
		risk:      riskSvc,
		scores:    scoreSvc,
		users:     users,
		pending:   pending,
		publisher: publisher,
		config:    config,
	}
}

func (s *service) Initiate(ctx context.Context, req Request) (*Result, error) {
	if !req.Amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if req.FromUserID == req.ToUserID {
		return nil, ledger.ErrSelfTransfer
	}
	if _, err := s.users.GetByID(req.ToUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	recent, err := s.ledger.ListTransactions(ctx, req.FromUserID, s.config.HistoryWindow)
	if err != nil {
		return nil, err
	}

	tc := risk.BuildContext(req.FromUserID, req.Amount, time.Now().UTC(),
		req.Latitude, req.Longitude, req.DeviceFingerprint, recent)
	assessment, err := s.risk.Evaluate(ctx, tc)
	if err != nil {
		return nil, err
	}

	metadata := buildMetadata(req, assessment)

	switch assessment.Recommendation {
	case risk.RecommendBlock:
		return &Result{State: StateBlocked, Assessment: assessment}, ErrFraudBlocked

	case risk.RecommendReview:
		pendingID := uuid.NewString()
		record := pendingTransfer{
			FromUserID:  req.FromUserID,
			ToUserID:    req.ToUserID,
			Amount:      req.Amount,
			Description: req.Description,
			Metadata:    metadata,
			Assessment:  assessment,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.pending.SetWithTTL(ctx, pendingKeyPrefix+pendingID, record, s.config.StepUpTTL); err != nil {
			return nil, err
		}
		return &Result{
			State:      StateStepUpRequired,
			Assessment: assessment,
			PendingID:  pendingID,
		}, nil

	default:
		return s.commit(ctx, req.FromUserID, req.ToUserID, req.Amount, req.Description, metadata, assessment)
	}
}

func (s *service) Confirm(ctx context.Context, userID uint, pendingID string) (*Result, error) {
	key := pendingKeyPrefix + pendingID

	var record pendingTransfer
	found, err := s.pending.Get(ctx, key, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPendingNotFound
	}
	if record.FromUserID != userID {
		return nil, ErrNotPendingOwner
	}

	if err := s.pending.Delete(ctx, key); err != nil {
		return nil, err
	}

	return s.commit(ctx, record.FromUserID, record.ToUserID, record.Amount, record.Description, record.Metadata, record.Assessment)
}

func (s *service) Abandon(ctx context.Context, userID uint, pendingID string) error {
	key := pendingKeyPrefix + pendingID

	var record pendingTransfer
	found, err := s.pending.Get(ctx, key, &record)
	if err != nil {
		return err
	}
	if !found {
		return ErrPendingNotFound
	}
	if record.FromUserID != userID {
		return ErrNotPendingOwner
	}

	return s.pending.Delete(ctx, key)
}

func (s *service) Wait() {
	s.wg.Wait()
}

// commit moves the funds and kicks off post-commit work. Score updates and
// event publishing run asynchronously; ledger failures surface to the
// caller, post-commit failures are logged only.
func (s *service) commit(ctx context.Context, fromUserID, toUserID uint, amount decimal.Decimal, description string, metadata models.JSON, assessment *risk.Assessment) (*Result, error) {
	txn, err := s.ledger.Transfer(ctx, fromUserID, toUserID, amount, description, metadata, assessment.Score)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The request context may already be done once the response is
		// written; post-commit work gets its own.
		bg := context.Background()

		if err := s.scores.RecordEvent(bg, fromUserID, score.EventCompletedTransfer); err != nil {
			logrus.WithError(err).WithField("user_id", fromUserID).Error("failed to record sender score event")
		}
		if err := s.scores.RecordEvent(bg, toUserID, score.EventCompletedTransfer); err != nil {
			logrus.WithError(err).WithField("user_id", toUserID).Error("failed to record recipient score event")
		}

		event := events.TransferCompletedEvent{
			TransactionID: txn.PublicID,
			FromUserID:    fromUserID,
			ToUserID:      toUserID,
			Amount:        amount,
			RiskScore:     assessment.Score,
			CompletedAt:   txn.CreatedAt,
		}
		if err := s.publisher.Publish(bg, events.TopicTransferCompleted, event); err != nil {
			logrus.WithError(err).WithField("transaction_id", txn.PublicID).Error("failed to publish transfer event")
		}
	}()

	return &Result{
		State:       StateCommitted,
		Transaction: txn,
		Assessment:  assessment,
	}, nil
}

func buildMetadata(req Request, assessment *risk.Assessment) models.JSON {
	metadata := models.JSON{}
	if req.Latitude != nil && req.Longitude != nil {
		metadata[models.MetadataKeyLatitude] = *req.Latitude
		metadata[models.MetadataKeyLongitude] = *req.Longitude
	}
	if req.DeviceFingerprint != "" {
		metadata[models.MetadataKeyDeviceID] = req.DeviceFingerprint
	}

	codes := make([]string, 0, len(assessment.Factors))
	for _, f := range assessment.Factors {
		codes = append(codes, f.Code)
	}
	metadata[models.MetadataKeyRiskFactors] = codes
	return metadata
}
