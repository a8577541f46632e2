package handlers

import (
	"errors"
	"net/http"

	"teamquiz/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *services.SessionService
	hub            *services.Hub
}

func NewSessionHandler(sessionService *services.SessionService, hub *services.Hub) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		hub:            hub,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrAnswerNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type createSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.CreateSession(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) CurrentSession(c *gin.Context) {
	session, err := h.sessionService.ActiveSession()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) GetState(c *gin.Context) {
	snap, err := h.sessionService.CachedSnapshot(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) Activate(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessionService.Activate(sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SessionHandler) StartGame(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessionService.StartGame(sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type setRoundRequest struct {
	Round int `json:"round" binding:"required"`
}

func (h *SessionHandler) SetRound(c *gin.Context) {
	sessionID := c.Param("id")

	var req setRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionService.SetRound(sessionID, req.Round); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type nextQuestionRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
}

func (h *SessionHandler) NextQuestion(c *gin.Context) {
	sessionID := c.Param("id")

	var req nextQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionService.AdvanceQuestion(sessionID, req.QuestionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type teamIDRequest struct {
	TeamID string `json:"team_id" binding:"required"`
}

func (h *SessionHandler) SetActiveTeam(c *gin.Context) {
	sessionID := c.Param("id")

	var req teamIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionService.SetActiveTeam(sessionID, req.TeamID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SessionHandler) Buzz(c *gin.Context) {
	sessionID := c.Param("id")

	var req teamIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed, err := h.sessionService.Buzz(sessionID, req.TeamID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	if !changed {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Buzzer already locked"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SessionHandler) ResetBuzzer(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessionService.ResetBuzzer(sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type setTimerRequest struct {
	Seconds int  `json:"seconds"`
	Running bool `json:"running"`
}

func (h *SessionHandler) SetTimer(c *gin.Context) {
	sessionID := c.Param("id")

	var req setTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionService.SetTimer(sessionID, req.Seconds, req.Running); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastTimer(sessionID, req.Seconds)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
