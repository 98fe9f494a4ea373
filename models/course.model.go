package models

import "gorm.io/gorm"

// Course is owned by the curriculum store; the quiz core reads it for titles.
type Course struct {
	gorm.Model
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Instructor  string  `json:"instructor"`
	Price       float64 `json:"price" gorm:"default:0"`
	IsPublished bool    `json:"is_published" gorm:"default:false"`
	IsDeleted   bool    `json:"-" gorm:"default:false"`
}
