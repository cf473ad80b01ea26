package repository

import (
	"context"
	"time"

	"github.com/codmenta/Merify/models"
	"gorm.io/gorm"
)

// PaymentRepository is the audit log of checkout sessions.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentBySession(ctx context.Context, gateway, sessionID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, gateway, sessionID, status string) error
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) GetPaymentBySession(ctx context.Context, gateway, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("gateway = ? AND session_id = ?", gateway, sessionID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus records the latest verified status and stamps the
// terminal timestamps.
func (r *gormPaymentRepo) UpdatePaymentStatus(ctx context.Context, gateway, sessionID, status string) error {
	updates := map[string]interface{}{"status": status}
	now := time.Now()
	switch status {
	case models.StatusCompleted:
		updates["completed_at"] = now
	case models.StatusFailed:
		updates["failed_at"] = now
	}
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("gateway = ? AND session_id = ?", gateway, sessionID).
		Updates(updates).Error
}
