package handlers

import (
	"net/http"
	"strconv"

	"teamquiz/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questionService *services.QuestionService
	authService     *services.AuthService
}

func NewQuestionHandler(questionService *services.QuestionService, authService *services.AuthService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		authService:     authService,
	}
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.CreateQuestion(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ListQuestions hides answer text unless the caller presents a valid admin
// code, mirroring the team-facing question listing.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var round *int
	if raw := c.Query("round"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round parameter"})
			return
		}
		round = &value
	}

	if h.isAdmin(c) {
		questions, err := h.questionService.ListQuestions(round)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, questions)
		return
	}

	views, err := h.questionService.ListQuestionViews(round)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionService.GetQuestion(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if h.isAdmin(c) {
		c.JSON(http.StatusOK, question)
		return
	}
	c.JSON(http.StatusOK, question.View())
}

func (h *QuestionHandler) isAdmin(c *gin.Context) bool {
	return h.authService.IsValidAdminCode(c.GetHeader("X-Admin-Code"))
}
