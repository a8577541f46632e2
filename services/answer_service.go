package services

import (
	"errors"

	"teamquiz/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAnswerNotFound = errors.New("answer not found")

// AnswerService records submitted answers and applies admin evaluations.
// Score effects go through the SessionService so the clamp and version
// bump happen on the same path as every other score change.
type AnswerService struct {
	db       *gorm.DB
	sessions *SessionService
}

func NewAnswerService(db *gorm.DB, sessions *SessionService) *AnswerService {
	return &AnswerService{
		db:       db,
		sessions: sessions,
	}
}

type SubmitAnswerRequest struct {
	TeamID     string `json:"team_id" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	SessionID  string `json:"session_id" binding:"required"`
	AnswerText string `json:"answer_text" binding:"required"`
	TimeTaken  int    `json:"time_taken"`
}

func (s *AnswerService) SubmitAnswer(req *SubmitAnswerRequest) (*models.Answer, error) {
	var team models.Team
	if err := s.db.First(&team, "id = ? AND session_id = ?", req.TeamID, req.SessionID).Error; err != nil {
		return nil, asNotFound(err, ErrTeamNotFound)
	}

	var question models.Question
	if err := s.db.First(&question, "id = ?", req.QuestionID).Error; err != nil {
		return nil, asNotFound(err, ErrQuestionNotFound)
	}

	answer := models.Answer{
		ID:         uuid.NewString(),
		TeamID:     req.TeamID,
		QuestionID: req.QuestionID,
		SessionID:  req.SessionID,
		AnswerText: req.AnswerText,
		TimeTaken:  req.TimeTaken,
	}

	if err := s.db.Create(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// EvaluateAnswer records the admin's verdict and awards the points to the
// team. Points may be negative; the score clamp still applies.
func (s *AnswerService) EvaluateAnswer(answerID string, isCorrect bool, points int) (*models.Answer, error) {
	var answer models.Answer
	if err := s.db.First(&answer, "id = ?", answerID).Error; err != nil {
		return nil, asNotFound(err, ErrAnswerNotFound)
	}

	answer.IsCorrect = &isCorrect
	answer.PointsAwarded = points
	if err := s.db.Model(&answer).Updates(map[string]interface{}{
		"is_correct":     isCorrect,
		"points_awarded": points,
	}).Error; err != nil {
		return nil, err
	}

	if _, err := s.sessions.AdjustScore(answer.SessionID, answer.TeamID, points); err != nil {
		return nil, err
	}

	return &answer, nil
}

// ListAnswers returns a session's submissions, newest first.
func (s *AnswerService) ListAnswers(sessionID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.Where("session_id = ?", sessionID).
		Preload("Team").
		Preload("Question").
		Order("created_at DESC").
		Find(&answers).Error
	return answers, err
}
