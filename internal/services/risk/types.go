package risk

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Risk levels
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// Recommendations
const (
	RecommendApprove = "approve"
	RecommendReview  = "review"
	RecommendBlock   = "block"
)

// TransactionContext carries everything the evaluator may consider about a
// prospective transaction. Location, Device and Pattern are optional; when
// nil the corresponding factor is omitted and does not skew the combined
// score.
type TransactionContext struct {
	UserID     uint
	Amount     decimal.Decimal
	OccurredAt time.Time
	Location   *LocationContext
	Device     *DeviceContext
	Pattern    *PatternContext
}

// LocationContext describes where the transaction originates. Known reports
// whether the coordinates match a location seen in the user's history.
type LocationContext struct {
	Latitude  float64
	Longitude float64
	Known     bool
}

// DeviceContext describes the originating device.
type DeviceContext struct {
	Fingerprint string
	Known       bool
}

// PatternContext describes how the transaction compares to the user's
// recent behaviour.
type PatternContext struct {
	Unusual bool
}

// Factor is one independently scored contributor to the combined risk
// score. Code is the stable identifier weights are keyed on; Name and
// Description are presentation only.
type Factor struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Assessment is the evaluator's verdict on a transaction.
type Assessment struct {
	Score          int      `json:"score"`
	Level          string   `json:"level"`
	Factors        []Factor `json:"factors"`
	Recommendation string   `json:"recommendation"`
}

// Evaluator scores a prospective transaction. The rule engine below is the
// default implementation; an ML-backed scorer can be substituted without
// touching the transfer orchestrator.
type Evaluator interface {
	Evaluate(ctx context.Context, tc TransactionContext) (*Assessment, error)
}

// Config holds the evaluator thresholds.
type Config struct {
	// ReviewAmountThreshold is where the amount factor starts to climb.
	ReviewAmountThreshold float64
	// HighAmountThreshold is where the amount factor reaches block range.
	HighAmountThreshold float64
	// AlertThreshold is the combined score at or above which a FraudAlert
	// is created.
	AlertThreshold int
}
