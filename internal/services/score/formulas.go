package score

import (
	"math"

	"confia/internal/models"
)

// Fixed formula weights. These must not drift: downstream consumers compare
// scores across releases.
const (
	wTradPaymentHistory    = 0.35
	wTradCreditUtilization = 0.30
	wTradCreditHistory     = 0.35

	wCommTrust       = 0.40
	wCommConnections = 0.30
	wCommInboundAvg  = 0.30

	wBehavPatterns       = 0.60
	wBehavPaymentHistory = 0.40

	wFinalTraditional = 0.40
	wFinalCommunity   = 0.35
	wFinalBehavior    = 0.25
)

func round(x float64) int {
	return int(math.Round(x))
}

func traditionalScore(f models.Factors) int {
	return round(f.PaymentHistory*wTradPaymentHistory +
		f.CreditUtilization*wTradCreditUtilization +
		f.CreditHistory*wTradCreditHistory)
}

// communityScore blends the user's community factors with the average trust
// level of connections pointing at the user (0 when there are none).
func communityScore(f models.Factors, avgInboundTrust float64) int {
	return round(f.CommunityTrust*wCommTrust +
		f.SocialConnections*wCommConnections +
		avgInboundTrust*wCommInboundAvg)
}

func behaviorScore(f models.Factors) int {
	return round(f.TransactionPatterns*wBehavPatterns +
		f.PaymentHistory*wBehavPaymentHistory)
}

// finalScore blends the three already-rounded sub-scores.
func finalScore(traditional, community, behavior int) int {
	return round(float64(traditional)*wFinalTraditional +
		float64(community)*wFinalCommunity +
		float64(behavior)*wFinalBehavior)
}

// recompute refreshes all four scores from the factors and the inbound
// trust average.
func recompute(cs *models.CreditScore, avgInboundTrust float64) {
	cs.TraditionalScore = traditionalScore(cs.Factors)
	cs.CommunityScore = communityScore(cs.Factors, avgInboundTrust)
	cs.BehaviorScore = behaviorScore(cs.Factors)
	cs.FinalScore = finalScore(cs.TraditionalScore, cs.CommunityScore, cs.BehaviorScore)
}

func capFactor(v float64) float64 {
	return math.Min(v, 100)
}
