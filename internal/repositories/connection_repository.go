package repositories

import (
	"errors"
	"fmt"

	"confia/internal/models"

	"gorm.io/gorm"
)

var (
	ErrConnectionNotFound  = errors.New("community connection not found")
	ErrDuplicateConnection = errors.New("connection already exists")
)

// ConnectionRepository persists the directed trust graph.
type ConnectionRepository interface {
	Create(conn *models.CommunityConnection) error
	GetByPair(fromUserID, toUserID uint) (*models.CommunityConnection, error)
	Update(conn *models.CommunityConnection) error
	// AverageInboundTrust returns the mean trust level over edges pointing at
	// the user, and the edge count. Zero average when there are none.
	AverageInboundTrust(userID uint) (float64, int64, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(conn *models.CommunityConnection) error {
	if err := r.db.Create(conn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateConnection
		}
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) GetByPair(fromUserID, toUserID uint) (*models.CommunityConnection, error) {
	var conn models.CommunityConnection
	err := r.db.Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConnectionNotFound
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &conn, nil
}

func (r *connectionRepository) Update(conn *models.CommunityConnection) error {
	if err := r.db.Save(conn).Error; err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) AverageInboundTrust(userID uint) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.CommunityConnection{}).
		Where("to_user_id = ?", userID).
		Select("COALESCE(AVG(trust_level), 0) as avg, COUNT(*) as count").
		Scan(&result).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate inbound trust: %w", err)
	}
	return result.Avg, result.Count, nil
}
