package handlers

import (
	"net/http"

	"teamquiz/services"

	"github.com/gin-gonic/gin"
)

type AnswerHandler struct {
	answerService *services.AnswerService
	hub           *services.Hub
}

func NewAnswerHandler(answerService *services.AnswerService, hub *services.Hub) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
		hub:           hub,
	}
}

func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.answerService.SubmitAnswer(&req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, answer)
}

type evaluateRequest struct {
	IsCorrect *bool `json:"is_correct" binding:"required"`
	Points    int   `json:"points"`
}

func (h *AnswerHandler) EvaluateAnswer(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.answerService.EvaluateAnswer(c.Param("id"), *req.IsCorrect, req.Points)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	// Evaluation changes a score, so the group needs a fresh snapshot.
	h.hub.BroadcastState(answer.SessionID)
	c.JSON(http.StatusOK, answer)
}

func (h *AnswerHandler) ListAnswers(c *gin.Context) {
	answers, err := h.answerService.ListAnswers(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, answers)
}
