package models

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	Round     int            `json:"round" gorm:"not null;index"`
	Text      string         `json:"question" gorm:"not null"`
	Answer    string         `json:"answer" gorm:"not null"`
	Options   []string       `json:"options,omitempty" gorm:"serializer:json"`
	Order     int            `json:"order" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// QuestionView is the team-facing shape of a question: same fields minus
// the answer text.
type QuestionView struct {
	ID      string   `json:"id"`
	Round   int      `json:"round"`
	Text    string   `json:"question"`
	Options []string `json:"options,omitempty"`
	Order   int      `json:"order"`
}

func (q Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Round:   q.Round,
		Text:    q.Text,
		Options: q.Options,
		Order:   q.Order,
	}
}
