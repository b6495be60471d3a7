package score

import (
	"context"
	"errors"
	"sync"
	"testing"

	"confia/internal/gateway"
	"confia/internal/models"
	"confia/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memScoreRepo struct {
	mu     sync.Mutex
	scores map[uint]*models.CreditScore
}

func newMemScoreRepo() *memScoreRepo {
	return &memScoreRepo{scores: make(map[uint]*models.CreditScore)}
}

func (r *memScoreRepo) Create(score *models.CreditScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scores[score.UserID]; ok {
		return errors.New("duplicate score")
	}
	copied := *score
	r.scores[score.UserID] = &copied
	return nil
}

func (r *memScoreRepo) GetByUserID(userID uint) (*models.CreditScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scores[userID]
	if !ok {
		return nil, repositories.ErrScoreNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memScoreRepo) Update(score *models.CreditScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *score
	r.scores[score.UserID] = &copied
	return nil
}

type memConnectionRepo struct {
	mu    sync.Mutex
	conns []*models.CommunityConnection
}

func (r *memConnectionRepo) Create(conn *models.CommunityConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.FromUserID == conn.FromUserID && c.ToUserID == conn.ToUserID {
			return repositories.ErrDuplicateConnection
		}
	}
	copied := *conn
	r.conns = append(r.conns, &copied)
	return nil
}

func (r *memConnectionRepo) GetByPair(fromUserID, toUserID uint) (*models.CommunityConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.FromUserID == fromUserID && c.ToUserID == toUserID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repositories.ErrConnectionNotFound
}

func (r *memConnectionRepo) Update(conn *models.CommunityConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.conns {
		if c.FromUserID == conn.FromUserID && c.ToUserID == conn.ToUserID {
			copied := *conn
			r.conns[i] = &copied
			return nil
		}
	}
	return repositories.ErrConnectionNotFound
}

func (r *memConnectionRepo) AverageInboundTrust(userID uint) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, count int64
	for _, c := range r.conns {
		if c.ToUserID == userID {
			sum += int64(c.TrustLevel)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type nopScoreCache struct{}

func (nopScoreCache) GetScore(context.Context, uint) (*models.CreditScore, error) {
	return nil, repositories.ErrScoreNotFound
}
func (nopScoreCache) CacheScore(context.Context, *models.CreditScore) error { return nil }
func (nopScoreCache) InvalidateScore(context.Context, uint) error           { return nil }

type stubGateway struct {
	factors *gateway.TraditionalFactors
	err     error
}

func (g *stubGateway) FetchTraditionalFactors(context.Context, uint) (*gateway.TraditionalFactors, error) {
	return g.factors, g.err
}

func (g *stubGateway) VerifyIdentity(context.Context, uint) (bool, error) {
	return g.err == nil, g.err
}

func newTestService(scores *memScoreRepo, conns *memConnectionRepo, gw gateway.VerificationGateway) Service {
	return NewService(scores, conns, gw, nopScoreCache{}, Config{Seed: 42})
}

func TestFormulas(t *testing.T) {
	f := models.Factors{
		PaymentHistory:      80,
		CreditUtilization:   60,
		CreditHistory:       40,
		CommunityTrust:      50,
		SocialConnections:   30,
		TransactionPatterns: 70,
	}

	// 80*.35 + 60*.30 + 40*.35 = 28 + 18 + 14 = 60
	assert.Equal(t, 60, traditionalScore(f))
	// 50*.40 + 30*.30 + 90*.30 = 20 + 9 + 27 = 56
	assert.Equal(t, 56, communityScore(f, 90))
	// 70*.60 + 80*.40 = 42 + 32 = 74
	assert.Equal(t, 74, behaviorScore(f))
	// 60*.40 + 56*.35 + 74*.25 = 24 + 19.6 + 18.5 = 62.1 -> 62
	assert.Equal(t, 62, finalScore(60, 56, 74))
}

func TestGetScore_InitializesFromGateway(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	gw := &stubGateway{factors: &gateway.TraditionalFactors{
		PaymentHistory:    90,
		CreditUtilization: 80,
		CreditHistory:     70,
	}}

	svc := newTestService(scores, conns, gw)

	cs, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), cs.UserID)
	assert.Equal(t, 90.0, cs.Factors.PaymentHistory)
	assert.Equal(t, 80.0, cs.Factors.CreditUtilization)
	assert.Equal(t, 70.0, cs.Factors.CreditHistory)
	// 90*.35 + 80*.30 + 70*.35 = 31.5 + 24 + 24.5 = 80
	assert.Equal(t, 80, cs.TraditionalScore)
	assert.NotZero(t, cs.FinalScore)
	assert.False(t, cs.LastUpdated.IsZero())
}

func TestGetScore_FallsBackWhenGatewayFails(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	gw := &stubGateway{err: gateway.ErrUnavailable}

	svc := newTestService(scores, conns, gw)

	cs, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err, "a failing provider must not fail the lookup")

	// Seeded ranges.
	assert.GreaterOrEqual(t, cs.Factors.PaymentHistory, 50.0)
	assert.Less(t, cs.Factors.PaymentHistory, 80.0)
	assert.GreaterOrEqual(t, cs.Factors.CreditUtilization, 60.0)
	assert.Less(t, cs.Factors.CreditUtilization, 85.0)
	assert.GreaterOrEqual(t, cs.Factors.CreditHistory, 40.0)
	assert.Less(t, cs.Factors.CreditHistory, 80.0)
}

func TestGetScore_DeterministicWithSameSeed(t *testing.T) {
	gw := &stubGateway{err: gateway.ErrUnavailable}

	first := newTestService(newMemScoreRepo(), &memConnectionRepo{}, gw)
	second := newTestService(newMemScoreRepo(), &memConnectionRepo{}, gw)

	a, err := first.GetScore(context.Background(), 1)
	require.NoError(t, err)
	b, err := second.GetScore(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, a.Factors, b.Factors)
	assert.Equal(t, a.FinalScore, b.FinalScore)
}

func TestRecordEvent_CompletedTransfer(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	svc := newTestService(scores, conns, &stubGateway{err: gateway.ErrUnavailable})

	before, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.RecordEvent(context.Background(), 1, EventCompletedTransfer))

	after, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, before.Factors.PaymentHistory+5, after.Factors.PaymentHistory)
	assert.Equal(t, before.Factors.TransactionPatterns+3, after.Factors.TransactionPatterns)
	assert.GreaterOrEqual(t, after.FinalScore, before.FinalScore)
}

func TestRecordEvent_FactorsCapAt100(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	svc := newTestService(scores, conns, &stubGateway{err: gateway.ErrUnavailable})

	_, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		require.NoError(t, svc.RecordEvent(context.Background(), 1, EventCompletedTransfer))
	}

	cs, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cs.Factors.PaymentHistory)
	assert.Equal(t, 100.0, cs.Factors.TransactionPatterns)
	assert.LessOrEqual(t, cs.FinalScore, 100)
}

func TestRecordEvent_UnknownKind(t *testing.T) {
	svc := newTestService(newMemScoreRepo(), &memConnectionRepo{}, &stubGateway{err: gateway.ErrUnavailable})
	err := svc.RecordEvent(context.Background(), 1, EventKind("mystery"))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestConnect(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	svc := newTestService(scores, conns, &stubGateway{err: gateway.ErrUnavailable})

	conn, err := svc.Connect(context.Background(), 1, 2, 60)
	require.NoError(t, err)
	assert.NotEmpty(t, conn.PublicID)
	assert.Equal(t, 60, conn.TrustLevel)

	// Both endpoints now have a persisted score.
	_, err = scores.GetByUserID(1)
	assert.NoError(t, err)
	_, err = scores.GetByUserID(2)
	assert.NoError(t, err)

	// The inbound edge raises the recipient's community score.
	cs, err := svc.GetScore(context.Background(), 2)
	require.NoError(t, err)
	expected := round(cs.Factors.CommunityTrust*wCommTrust +
		cs.Factors.SocialConnections*wCommConnections +
		60*wCommInboundAvg)
	assert.Equal(t, expected, cs.CommunityScore)

	_, err = svc.Connect(context.Background(), 1, 1, 50)
	assert.ErrorIs(t, err, ErrSelfConnection)

	_, err = svc.Connect(context.Background(), 1, 2, 50)
	assert.ErrorIs(t, err, ErrDuplicateConnection)

	_, err = svc.Connect(context.Background(), 1, 3, 101)
	assert.ErrorIs(t, err, ErrInvalidTrustLevel)

	_, err = svc.Connect(context.Background(), 1, 3, -1)
	assert.ErrorIs(t, err, ErrInvalidTrustLevel)
}

func TestEndorse(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	svc := newTestService(scores, conns, &stubGateway{err: gateway.ErrUnavailable})

	_, err := svc.Connect(context.Background(), 1, 2, 90)
	require.NoError(t, err)

	// Three endorsements: 90 -> 95 -> 100 -> stays 100.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Endorse(context.Background(), 1, 2))
	}

	conn, err := conns.GetByPair(1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.MaxTrustLevel, conn.TrustLevel)
	assert.Equal(t, 3, conn.EndorsementCount)

	err = svc.Endorse(context.Background(), 2, 1)
	assert.ErrorIs(t, err, ErrConnectionNotFound, "endorsement follows edge direction")
}

func TestEndorse_TargetCommunityScoreRises(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	svc := newTestService(scores, conns, &stubGateway{err: gateway.ErrUnavailable})

	_, err := svc.Connect(context.Background(), 1, 2, 40)
	require.NoError(t, err)

	target, err := svc.GetScore(context.Background(), 2)
	require.NoError(t, err)
	prev := target.CommunityScore

	for step, wantTrust := range []int{45, 50, 55} {
		require.NoError(t, svc.Endorse(context.Background(), 1, 2))

		conn, err := conns.GetByPair(1, 2)
		require.NoError(t, err)
		assert.Equal(t, wantTrust, conn.TrustLevel, "endorsement %d", step+1)

		target, err = svc.GetScore(context.Background(), 2)
		require.NoError(t, err)
		if prev < 100 {
			assert.Greater(t, target.CommunityScore, prev,
				"community score rises with each endorsement")
		} else {
			assert.Equal(t, 100, target.CommunityScore)
		}
		prev = target.CommunityScore
	}
}

func TestRecordEvent_ConcurrentUpdatesAreSerialized(t *testing.T) {
	scores := newMemScoreRepo()
	conns := &memConnectionRepo{}
	svc := newTestService(scores, conns, &stubGateway{err: gateway.ErrUnavailable})

	before, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)

	const events = 10
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.RecordEvent(context.Background(), 1, EventCompletedTransfer)
		}()
	}
	wg.Wait()

	after, err := svc.GetScore(context.Background(), 1)
	require.NoError(t, err)

	// Every nudge lands exactly once, up to the cap.
	wantPH := capFactor(before.Factors.PaymentHistory + 5*events)
	wantTP := capFactor(before.Factors.TransactionPatterns + 3*events)
	assert.Equal(t, wantPH, after.Factors.PaymentHistory)
	assert.Equal(t, wantTP, after.Factors.TransactionPatterns)
}
