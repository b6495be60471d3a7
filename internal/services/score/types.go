package score

import (
	"context"
	"errors"
	"time"

	"confia/internal/models"
)

// EventKind identifies a score-affecting event.
type EventKind string

const (
	EventCompletedTransfer EventKind = "completed_transfer"
	EventNewConnection     EventKind = "new_connection"
	EventEndorsement       EventKind = "endorsement"
)

// Service errors
var (
	ErrSelfConnection      = errors.New("cannot connect to self")
	ErrConnectionNotFound  = errors.New("no connection to endorse")
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrInvalidTrustLevel   = errors.New("trust level must be between 0 and 100")
	ErrUnknownEvent        = errors.New("unknown score event kind")
)

// Service maintains composite trust scores and the community trust graph.
type Service interface {
	// GetScore returns the user's score, lazily initializing it on first
	// lookup.
	GetScore(ctx context.Context, userID uint) (*models.CreditScore, error)

	// RecordEvent nudges the relevant factors and recomputes all four
	// scores. Recomputes are serialized per user.
	RecordEvent(ctx context.Context, userID uint, kind EventKind) error

	// Connect creates a directed trust edge and recomputes both users.
	Connect(ctx context.Context, fromUserID, toUserID uint, trustLevel int) (*models.CommunityConnection, error)

	// Endorse raises the from->to edge's trust level one step and
	// recomputes the endorsed user.
	Endorse(ctx context.Context, fromUserID, toUserID uint) error
}

// Cache is the subset of the cache service the score engine needs.
type Cache interface {
	GetScore(ctx context.Context, userID uint) (*models.CreditScore, error)
	CacheScore(ctx context.Context, score *models.CreditScore) error
	InvalidateScore(ctx context.Context, userID uint) error
}

// Config holds score engine knobs.
type Config struct {
	// Seed for the factor-seeding pseudo-random source. Injected so tests
	// are reproducible; the core never uses system randomness.
	Seed int64
	// GatewayTimeout bounds the verification provider call during lazy
	// initialization.
	GatewayTimeout time.Duration
}
