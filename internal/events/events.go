// Package events publishes domain events to Kafka for downstream consumers
// (analytics, notification, compliance). Publishing is best effort: the
// transfer path never fails because a broker is down.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Topics
const (
	TopicTransferCompleted = "transfers.completed"
	TopicFraudAlert        = "fraud.alerts"
)

// TransferCompletedEvent is emitted after a transfer commits to the ledger.
type TransferCompletedEvent struct {
	TransactionID string          `json:"transaction_id"`
	FromUserID    uint            `json:"from_user_id"`
	ToUserID      uint            `json:"to_user_id"`
	Amount        decimal.Decimal `json:"amount"`
	RiskScore     int             `json:"risk_score"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// FraudAlertEvent is emitted when a risk evaluation crosses the alert
// threshold.
type FraudAlertEvent struct {
	AlertID   string    `json:"alert_id"`
	UserID    uint      `json:"user_id"`
	Severity  string    `json:"severity"`
	RiskScore int       `json:"risk_score"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher sends events to a topic. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
	Close() error
}

// NoopPublisher discards every event. Used when no brokers are configured
// and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
