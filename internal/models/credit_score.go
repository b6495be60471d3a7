package models

import "time"

// CreditScore is a user's composite trust score. One row per user, created
// lazily on first lookup and recomputed after every qualifying event.
//
// The six factors are kept in [0,100]. The traditional trio (payment
// history, credit utilization, credit history) comes from the verification
// gateway when it is reachable; the rest are seeded locally.
type CreditScore struct {
	ID               uint      `gorm:"primarykey" json:"-"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TraditionalScore int       `json:"traditional_score"`
	CommunityScore   int       `json:"community_score"`
	BehaviorScore    int       `json:"behavior_score"`
	FinalScore       int       `json:"final_score"`
	Factors          Factors   `gorm:"embedded" json:"factors"`
	LastUpdated      time.Time `json:"last_updated"`
	CreatedAt        time.Time `json:"-"`
}

// Factors are the named inputs to the score formulas.
type Factors struct {
	PaymentHistory      float64 `gorm:"column:payment_history" json:"payment_history"`
	CreditUtilization   float64 `gorm:"column:credit_utilization" json:"credit_utilization"`
	CreditHistory       float64 `gorm:"column:credit_history" json:"credit_history"`
	CommunityTrust      float64 `gorm:"column:community_trust" json:"community_trust"`
	SocialConnections   float64 `gorm:"column:social_connections" json:"social_connections"`
	TransactionPatterns float64 `gorm:"column:transaction_patterns" json:"transaction_patterns"`
}
