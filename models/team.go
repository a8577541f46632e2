package models

import (
	"time"

	"gorm.io/gorm"
)

// Team statuses. All transitions are driven by explicit commands.
const (
	StatusWaiting   = "waiting"
	StatusAnswering = "answering"
	StatusLocked    = "locked"
	StatusTimeout   = "timeout"
	StatusBuzzed    = "buzzed"
)

type Team struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	SessionID string         `json:"session_id" gorm:"not null;index"`
	Name      string         `json:"name" gorm:"not null"`
	Code      string         `json:"code" gorm:"uniqueIndex;not null"`
	Score     int            `json:"score" gorm:"not null;default:0"`
	Status    string         `json:"status" gorm:"not null;default:'waiting'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Session GameSession `json:"-" gorm:"foreignKey:SessionID"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusWaiting, StatusAnswering, StatusLocked, StatusTimeout, StatusBuzzed:
		return true
	}
	return false
}
