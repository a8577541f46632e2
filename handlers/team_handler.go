package handlers

import (
	"net/http"

	"teamquiz/services"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	sessionService *services.SessionService
	hub            *services.Hub
}

func NewTeamHandler(sessionService *services.SessionService, hub *services.Hub) *TeamHandler {
	return &TeamHandler{
		sessionService: sessionService,
		hub:            hub,
	}
}

type createTeamRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required"`
}

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	sessionID := c.Param("id")

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.sessionService.CreateTeam(sessionID, req.ID, req.Name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.sessionService.Teams(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, teams)
}

type updateScoreRequest struct {
	Points int `json:"points"`
}

func (h *TeamHandler) UpdateScore(c *gin.Context) {
	sessionID := c.Param("id")
	teamID := c.Param("teamID")

	var req updateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.sessionService.AdjustScore(sessionID, teamID, req.Points)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, team)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TeamHandler) UpdateStatus(c *gin.Context) {
	sessionID := c.Param("id")
	teamID := c.Param("teamID")

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionService.SetStatus(sessionID, teamID, req.Status); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TeamHandler) ResetAll(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessionService.ResetAllTeams(sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastState(sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
