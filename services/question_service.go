package services

import (
	"teamquiz/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionService manages the question bank. Questions are immutable
// reference data once a game is running; only admins see answer text.
type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

type CreateQuestionRequest struct {
	Round   int      `json:"round" binding:"required"`
	Text    string   `json:"question" binding:"required"`
	Answer  string   `json:"answer" binding:"required"`
	Options []string `json:"options"`
	Order   int      `json:"order"`
}

func (s *QuestionService) CreateQuestion(req *CreateQuestionRequest) (*models.Question, error) {
	question := models.Question{
		ID:      uuid.NewString(),
		Round:   req.Round,
		Text:    req.Text,
		Answer:  req.Answer,
		Options: req.Options,
		Order:   req.Order,
	}

	if err := s.db.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *QuestionService) GetQuestion(id string) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err, ErrQuestionNotFound)
	}
	return &question, nil
}

// ListQuestions returns questions ordered by round and position, optionally
// filtered to one round.
func (s *QuestionService) ListQuestions(round *int) ([]models.Question, error) {
	query := s.db.Order("round ASC, \"order\" ASC")
	if round != nil {
		query = query.Where("round = ?", *round)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// ListQuestionViews is the team-facing listing: same questions with the
// answer text stripped.
func (s *QuestionService) ListQuestionViews(round *int) ([]models.QuestionView, error) {
	questions, err := s.ListQuestions(round)
	if err != nil {
		return nil, err
	}

	views := make([]models.QuestionView, len(questions))
	for i, q := range questions {
		views[i] = q.View()
	}
	return views, nil
}
