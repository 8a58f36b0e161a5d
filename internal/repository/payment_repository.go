package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormPaymentRepository is a GORM implementation of PaymentRepository
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create records a payment attempt
func (r *GormPaymentRepository) Create(ctx context.Context, payment *models.SubscriptionPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListByUser returns a page of a user's payments, newest first
func (r *GormPaymentRepository) ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.SubscriptionPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SubscriptionPayment{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	payments := []models.SubscriptionPayment{}
	if err := query.Order("created_at DESC, id DESC").Scopes(database.Paginate(params)).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
