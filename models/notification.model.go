package models

import "gorm.io/gorm"

// Notification types
const (
	NotificationOrder       = "order"
	NotificationCertificate = "certificate"
)

// Notification is an in-app message shown in the learner's notification dropdown
type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"index;not null"`
	Title   string `json:"title" gorm:"not null"`
	Message string `json:"message" gorm:"default:''"`
	Link    string `json:"link" gorm:"default:'/my-orders'"`
	IsRead  bool   `json:"is_read" gorm:"default:false;index"`
	Type    string `json:"type" gorm:"default:'order'"`
}
