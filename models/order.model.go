package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Order is a course purchase recorded by the payment collaborator
type Order struct {
	gorm.Model
	UserID          uint      `json:"user_id" gorm:"index:idx_order_user_course,priority:1;not null"`
	CourseID        uint      `json:"course_id" gorm:"index:idx_order_user_course,priority:2;not null"`
	TotalPrice      float64   `json:"total_price" gorm:"not null"`
	PaymentStatus   string    `json:"payment_status" gorm:"default:'pending';index"` // pending/paid/failed/refunded
	PaymentIntentID string    `json:"payment_intent_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	PurchaseDate    time.Time `json:"purchase_date"`
}
