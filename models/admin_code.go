package models

import (
	"time"

	"gorm.io/gorm"
)

type AdminCode struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CodeHash  string         `json:"-" gorm:"not null"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
