package quiz

import (
	"context"
	"errors"

	"coursesi/models"

	"gorm.io/gorm"
)

// OrderReader is the read-only view of the payment collaborator
type OrderReader interface {
	// EarliestPaidOrder returns nil when the learner has no paid order for the course
	EarliestPaidOrder(ctx context.Context, userID, courseID uint) (*models.Order, error)
}

// GormOrderReader reads orders from the shared database
type GormOrderReader struct {
	db *gorm.DB
}

func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

func (r *GormOrderReader) EarliestPaidOrder(ctx context.Context, userID, courseID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND payment_status = ?", userID, courseID, models.PaymentPaid).
		Order("purchase_date asc, id asc").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
