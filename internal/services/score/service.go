// Package score maintains each user's composite trust score: a weighted
// blend of traditional, community and behavioral sub-scores, fed by the
// transaction stream and the community trust graph.
package score

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"confia/internal/gateway"
	"confia/internal/models"
	"confia/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type service struct {
	scores      repositories.ScoreRepository
	connections repositories.ConnectionRepository
	gateway     gateway.VerificationGateway
	cache       Cache
	config      Config

	rngMu sync.Mutex
	rng   *rand.Rand

	locks *userLocks
}

// NewService creates the score engine. The gateway may be nil, in which case
// traditional factors are always seeded locally.
func NewService(scores repositories.ScoreRepository, connections repositories.ConnectionRepository, gw gateway.VerificationGateway, cache Cache, config Config) Service {
	if scores == nil {
		panic("score repository is required")
	}
	if connections == nil {
		panic("connection repository is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	if config.GatewayTimeout == 0 {
		config.GatewayTimeout = 2 * time.Second
	}

	return &service{
		scores:      scores,
		connections: connections,
		gateway:     gw,
		cache:       cache,
		config:      config,
		rng:         rand.New(rand.NewSource(config.Seed)),
		locks:       newUserLocks(),
	}
}

func (s *service) GetScore(ctx context.Context, userID uint) (*models.CreditScore, error) {
	if cached, err := s.cache.GetScore(ctx, userID); err == nil {
		return cached, nil
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	cs, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheScore(ctx, cs); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to cache score")
	}
	return cs, nil
}

func (s *service) RecordEvent(ctx context.Context, userID uint, kind EventKind) error {
	switch kind {
	case EventCompletedTransfer, EventNewConnection, EventEndorsement:
	default:
		return ErrUnknownEvent
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	cs, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return err
	}

	if kind == EventCompletedTransfer {
		cs.Factors.PaymentHistory = capFactor(cs.Factors.PaymentHistory + 5)
		cs.Factors.TransactionPatterns = capFactor(cs.Factors.TransactionPatterns + 3)
	}
	// Connection and endorsement events carry no factor nudge of their own:
	// they change the graph, which flows in through the inbound average.

	avg, _, err := s.connections.AverageInboundTrust(userID)
	if err != nil {
		return err
	}
	recompute(cs, avg)
	cs.LastUpdated = time.Now().UTC()

	if err := s.scores.Update(cs); err != nil {
		return err
	}

	if err := s.cache.InvalidateScore(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate score cache")
	}
	return nil
}

func (s *service) Connect(ctx context.Context, fromUserID, toUserID uint, trustLevel int) (*models.CommunityConnection, error) {
	if fromUserID == toUserID {
		return nil, ErrSelfConnection
	}
	if trustLevel < 0 || trustLevel > models.MaxTrustLevel {
		return nil, ErrInvalidTrustLevel
	}

	conn := &models.CommunityConnection{
		PublicID:   uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		TrustLevel: trustLevel,
	}
	if err := s.connections.Create(conn); err != nil {
		if errors.Is(err, repositories.ErrDuplicateConnection) {
			return nil, ErrDuplicateConnection
		}
		return nil, err
	}

	// Both endpoints see their community score change.
	if err := s.RecordEvent(ctx, fromUserID, EventNewConnection); err != nil {
		return nil, err
	}
	if err := s.RecordEvent(ctx, toUserID, EventNewConnection); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *service) Endorse(ctx context.Context, fromUserID, toUserID uint) error {
	conn, err := s.connections.GetByPair(fromUserID, toUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrConnectionNotFound) {
			return ErrConnectionNotFound
		}
		return err
	}

	if conn.TrustLevel < models.MaxTrustLevel {
		conn.TrustLevel += models.EndorsementStep
		if conn.TrustLevel > models.MaxTrustLevel {
			conn.TrustLevel = models.MaxTrustLevel
		}
	}
	conn.EndorsementCount++
	if err := s.connections.Update(conn); err != nil {
		return err
	}

	return s.RecordEvent(ctx, toUserID, EventEndorsement)
}

// loadOrInit must be called with the user's lock held.
func (s *service) loadOrInit(ctx context.Context, userID uint) (*models.CreditScore, error) {
	cs, err := s.scores.GetByUserID(userID)
	if err == nil {
		return cs, nil
	}
	if !errors.Is(err, repositories.ErrScoreNotFound) {
		return nil, err
	}

	cs = &models.CreditScore{
		UserID:      userID,
		Factors:     s.seedFactors(ctx, userID),
		LastUpdated: time.Now().UTC(),
	}

	avg, _, err := s.connections.AverageInboundTrust(userID)
	if err != nil {
		return nil, err
	}
	recompute(cs, avg)

	if err := s.scores.Create(cs); err != nil {
		// Lost a race with another process; the unique index on user_id
		// rejects the second insert.
		if existing, getErr := s.scores.GetByUserID(userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return cs, nil
}

// seedFactors produces the initial factor set. Traditional factors come
// from the verification provider when it answers in time; everything else,
// and the fallback path, uses the injected seedable source with the same
// bounded ranges the product launched with.
func (s *service) seedFactors(ctx context.Context, userID uint) models.Factors {
	f := models.Factors{
		PaymentHistory:      s.randRange(50, 30),
		CreditUtilization:   s.randRange(60, 25),
		CreditHistory:       s.randRange(40, 40),
		CommunityTrust:      s.randRange(30, 20),
		SocialConnections:   s.randRange(20, 30),
		TransactionPatterns: s.randRange(50, 30),
	}

	if s.gateway == nil {
		return f
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()

	traditional, err := s.gateway.FetchTraditionalFactors(callCtx, userID)
	if err != nil {
		// Degrade to seeded factors; the provider being down must never
		// fail a score lookup.
		logrus.WithError(err).WithField("user_id", userID).
			Warn("verification provider unavailable, using seeded traditional factors")
		return f
	}

	f.PaymentHistory = clampFactor(traditional.PaymentHistory)
	f.CreditUtilization = clampFactor(traditional.CreditUtilization)
	f.CreditHistory = clampFactor(traditional.CreditHistory)
	return f
}

func (s *service) randRange(base, spread float64) float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return base + s.rng.Float64()*spread
}

func clampFactor(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
