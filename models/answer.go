package models

import (
	"time"

	"gorm.io/gorm"
)

type Answer struct {
	ID            string         `json:"id" gorm:"primaryKey"`
	TeamID        string         `json:"team_id" gorm:"not null;index"`
	QuestionID    string         `json:"question_id" gorm:"not null;index"`
	SessionID     string         `json:"session_id" gorm:"not null;index"`
	AnswerText    string         `json:"answer_text" gorm:"not null"`
	IsCorrect     *bool          `json:"is_correct"` // nil until an admin evaluates
	PointsAwarded int            `json:"points_awarded" gorm:"not null;default:0"`
	TimeTaken     int            `json:"time_taken" gorm:"not null;default:0"` // seconds
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Team     Team        `json:"team,omitempty"`
	Question Question    `json:"question,omitempty"`
	Session  GameSession `json:"-"`
}
