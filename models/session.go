package models

import (
	"time"

	"gorm.io/gorm"
)

// Round types mirror the four game rounds.
const (
	RoundGeneral    = "general"
	RoundPassTheMic = "pass-the-mic"
	RoundBuzzer     = "buzzer"
	RoundRapidFire  = "rapid-fire"
)

type GameSession struct {
	ID                string         `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"not null"`
	CurrentRound      int            `json:"current_round" gorm:"not null;default:1"`
	RoundType         string         `json:"round_type" gorm:"not null;default:'general'"`
	CurrentQuestionID *string        `json:"current_question_id"`
	ActiveTeamID      *string        `json:"active_team_id"`
	ActiveTeamName    string         `json:"active_team_name,omitempty" gorm:"-"`
	BuzzerLocked      bool           `json:"buzzer_locked" gorm:"not null;default:false"`
	BuzzerEnabled     bool           `json:"buzzer_enabled" gorm:"not null;default:false"`
	TimerSeconds      int            `json:"timer_seconds" gorm:"not null;default:0"`
	IsTimerRunning    bool           `json:"is_timer_running" gorm:"not null;default:false"`
	GameStarted       bool           `json:"game_started" gorm:"not null;default:false"`
	IsActive          bool           `json:"is_active" gorm:"not null;default:false"`
	Version           int64          `json:"version" gorm:"not null;default:0"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Teams           []Team    `json:"teams,omitempty" gorm:"foreignKey:SessionID"`
	ActiveTeam      *Team     `json:"active_team,omitempty" gorm:"foreignKey:ActiveTeamID"`
	CurrentQuestion *Question `json:"current_question,omitempty" gorm:"foreignKey:CurrentQuestionID"`
}

// RoundTypeFor maps a round number to its round type. Unknown rounds fall
// back to general questions.
func RoundTypeFor(round int) string {
	switch round {
	case 2:
		return RoundPassTheMic
	case 3:
		return RoundBuzzer
	case 4:
		return RoundRapidFire
	default:
		return RoundGeneral
	}
}
