package models

import (
	"gorm.io/gorm"
)

// User mirrors the identity provider's account record. The quiz core only
// reads it to address certificate notifications.
type User struct {
	gorm.Model
	Name      string `json:"name" gorm:"default:''"`
	Lastname  string `json:"lastname" gorm:"default:''"`
	Email     string `json:"email" gorm:"unique;not null"`
	Role      string `json:"role" gorm:"default:'USER'"` // USER, ADMIN
	IsDeleted bool   `json:"-" gorm:"default:false"`
}

// FullName joins name and lastname for display
func (u User) FullName() string {
	if u.Lastname == "" {
		return u.Name
	}
	return u.Name + " " + u.Lastname
}
