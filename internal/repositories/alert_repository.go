package repositories

import (
	"errors"
	"fmt"

	"confia/internal/models"

	"gorm.io/gorm"
)

var ErrAlertNotFound = errors.New("fraud alert not found")

// AlertRepository persists fraud alerts.
type AlertRepository interface {
	Create(alert *models.FraudAlert) error
	GetByPublicID(publicID string) (*models.FraudAlert, error)
	ListByUser(userID uint, includeResolved bool) ([]models.FraudAlert, error)
	Update(alert *models.FraudAlert) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(alert *models.FraudAlert) error {
	if err := r.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create fraud alert: %w", err)
	}
	return nil
}

func (r *alertRepository) GetByPublicID(publicID string) (*models.FraudAlert, error) {
	var alert models.FraudAlert
	if err := r.db.Where("public_id = ?", publicID).First(&alert).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get fraud alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) ListByUser(userID uint, includeResolved bool) ([]models.FraudAlert, error) {
	query := r.db.Where("user_id = ?", userID)
	if !includeResolved {
		query = query.Where("resolved = false")
	}
	var alerts []models.FraudAlert
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list fraud alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) Update(alert *models.FraudAlert) error {
	if err := r.db.Save(alert).Error; err != nil {
		return fmt.Errorf("failed to update fraud alert: %w", err)
	}
	return nil
}
