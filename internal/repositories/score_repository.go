package repositories

import (
	"errors"
	"fmt"

	"confia/internal/models"

	"gorm.io/gorm"
)

var ErrScoreNotFound = errors.New("credit score not found")

// ScoreRepository persists per-user composite trust scores.
type ScoreRepository interface {
	Create(score *models.CreditScore) error
	GetByUserID(userID uint) (*models.CreditScore, error)
	Update(score *models.CreditScore) error
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Create(score *models.CreditScore) error {
	if err := r.db.Create(score).Error; err != nil {
		return fmt.Errorf("failed to create credit score: %w", err)
	}
	return nil
}

func (r *scoreRepository) GetByUserID(userID uint) (*models.CreditScore, error) {
	var score models.CreditScore
	if err := r.db.Where("user_id = ?", userID).First(&score).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to get credit score: %w", err)
	}
	return &score, nil
}

func (r *scoreRepository) Update(score *models.CreditScore) error {
	if err := r.db.Save(score).Error; err != nil {
		return fmt.Errorf("failed to update credit score: %w", err)
	}
	return nil
}
