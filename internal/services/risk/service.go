// Package risk scores prospective transactions with a deterministic rule
// engine. Each contextual factor is scored independently; the combined score
// is a fixed weighted average keyed by stable factor codes. Evaluation is
// side-effect free except for fraud alert creation above the configured
// threshold.
package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confia/internal/events"
	"confia/internal/models"
	"confia/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service errors
var (
	ErrAlertNotFound = errors.New("fraud alert not found")
	ErrAlertResolved = errors.New("fraud alert already resolved")
)

// Service is the evaluator plus alert management, which this package owns
// because it is the only alert producer.
type Service interface {
	Evaluator
	ListAlerts(ctx context.Context, userID uint, includeResolved bool) ([]models.FraudAlert, error)
	ResolveAlert(ctx context.Context, publicID string) (*models.FraudAlert, error)
}

type service struct {
	alerts    repositories.AlertRepository
	publisher events.Publisher
	config    Config
}

// NewService creates the rule-engine evaluator. The publisher may be nil.
func NewService(alerts repositories.AlertRepository, publisher events.Publisher, config Config) Service {
	if alerts == nil {
		panic("alert repository is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if config.ReviewAmountThreshold == 0 {
		config.ReviewAmountThreshold = 5000
	}
	if config.HighAmountThreshold == 0 {
		config.HighAmountThreshold = 10000
	}
	if config.AlertThreshold == 0 {
		config.AlertThreshold = 60
	}

	return &service{
		alerts:    alerts,
		publisher: publisher,
		config:    config,
	}
}

func (s *service) Evaluate(ctx context.Context, tc TransactionContext) (*Assessment, error) {
	factors := []Factor{
		s.amountFactor(tc.Amount),
		timeFactor(tc.OccurredAt),
	}
	if tc.Location != nil {
		factors = append(factors, locationFactor(tc.Location))
	}
	if tc.Device != nil {
		factors = append(factors, deviceFactor(tc.Device))
	}
	if tc.Pattern != nil {
		factors = append(factors, patternFactor(tc.Pattern))
	}

	score := combine(factors)
	assessment := &Assessment{
		Score:          score,
		Level:          levelFor(score),
		Factors:        factors,
		Recommendation: recommendationFor(score),
	}

	if score >= s.config.AlertThreshold {
		if err := s.raiseAlert(ctx, tc.UserID, assessment); err != nil {
			// Alert persistence failure must not mask the assessment.
			logrus.WithError(err).WithField("user_id", tc.UserID).Error("failed to record fraud alert")
		}
	}

	return assessment, nil
}

func (s *service) raiseAlert(ctx context.Context, userID uint, assessment *Assessment) error {
	alert := &models.FraudAlert{
		PublicID:    uuid.NewString(),
		UserID:      userID,
		Type:        models.AlertTypeHighRiskTransaction,
		Severity:    assessment.Level,
		Description: fmt.Sprintf("risk score %d (%s)", assessment.Score, assessment.Recommendation),
	}
	if err := s.alerts.Create(alert); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.TopicFraudAlert, events.FraudAlertEvent{
		AlertID:   alert.PublicID,
		UserID:    userID,
		Severity:  alert.Severity,
		RiskScore: assessment.Score,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		logrus.WithError(err).Warn("failed to publish fraud alert event")
	}
	return nil
}

func (s *service) ListAlerts(ctx context.Context, userID uint, includeResolved bool) ([]models.FraudAlert, error) {
	return s.alerts.ListByUser(userID, includeResolved)
}

func (s *service) ResolveAlert(ctx context.Context, publicID string) (*models.FraudAlert, error) {
	alert, err := s.alerts.GetByPublicID(publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrAlertNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	if alert.Resolved {
		return nil, ErrAlertResolved
	}

	now := time.Now().UTC()
	alert.Resolved = true
	alert.ResolvedAt = &now
	if err := s.alerts.Update(alert); err != nil {
		return nil, err
	}
	return alert, nil
}
