package models

import "time"

// CommunityConnection is a directed edge in the trust graph. The endpoints
// are immutable; endorsements raise TrustLevel in steps of 5, capped at 100.
type CommunityConnection struct {
	ID               uint      `gorm:"primarykey" json:"-"`
	PublicID         string    `gorm:"uniqueIndex;size:36;not null" json:"id"`
	FromUserID       uint      `gorm:"index:idx_connection_pair,unique;not null" json:"from_user_id"`
	ToUserID         uint      `gorm:"index:idx_connection_pair,unique;index;not null" json:"to_user_id"`
	TrustLevel       int       `gorm:"not null" json:"trust_level"`
	EndorsementCount int       `gorm:"default:0" json:"endorsement_count"`
	Verified         bool      `gorm:"default:false" json:"verified"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MaxTrustLevel caps a connection's trust level.
const MaxTrustLevel = 100

// EndorsementStep is the trust level increase per endorsement.
const EndorsementStep = 5
