package routes

import (
	"log"
	"net/http"

	"teamquiz/handlers"
	"teamquiz/middleware"
	"teamquiz/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	teamHandler *handlers.TeamHandler,
	questionHandler *handlers.QuestionHandler,
	answerHandler *handlers.AnswerHandler,
	hub *services.Hub,
	sessionService *services.SessionService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/admin-login", authHandler.AdminLogin)
			auth.POST("/team-login", authHandler.TeamLogin)
		}

		// Public game routes
		api.GET("/active-session", sessionHandler.CurrentSession)

		sessions := api.Group("/sessions")
		{
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.GET("/:id/state", sessionHandler.GetState)
			sessions.GET("/:id/teams", teamHandler.ListTeams)
			sessions.POST("/:id/buzz", sessionHandler.Buzz)
		}

		questions := api.Group("/questions")
		{
			questions.GET("", questionHandler.ListQuestions)
			questions.GET("/:id", questionHandler.GetQuestion)
		}

		answers := api.Group("/answers")
		{
			answers.POST("", answerHandler.SubmitAnswer)
		}

		// Admin routes
		admin := api.Group("/")
		admin.Use(middleware.AdminAuth(jwtSecret))
		{
			admin.POST("/sessions", sessionHandler.CreateSession)
			admin.POST("/sessions/:id/activate", sessionHandler.Activate)
			admin.POST("/sessions/:id/start", sessionHandler.StartGame)
			admin.POST("/sessions/:id/round", sessionHandler.SetRound)
			admin.POST("/sessions/:id/next-question", sessionHandler.NextQuestion)
			admin.POST("/sessions/:id/active-team", sessionHandler.SetActiveTeam)
			admin.POST("/sessions/:id/reset-buzzer", sessionHandler.ResetBuzzer)
			admin.POST("/sessions/:id/timer", sessionHandler.SetTimer)
			admin.POST("/sessions/:id/teams", teamHandler.CreateTeam)
			admin.POST("/sessions/:id/teams/reset", teamHandler.ResetAll)
			admin.POST("/sessions/:id/teams/:teamID/score", teamHandler.UpdateScore)
			admin.POST("/sessions/:id/teams/:teamID/status", teamHandler.UpdateStatus)
			admin.GET("/sessions/:id/answers", answerHandler.ListAnswers)
			admin.POST("/questions", questionHandler.CreateQuestion)
			admin.POST("/answers/:id/evaluate", answerHandler.EvaluateAnswer)
		}
	}

	// WebSocket endpoint for real-time game state
	router.GET("/ws/:sessionID", func(c *gin.Context) {
		sessionID := c.Param("sessionID")

		// Only active sessions accept connections; everyone else is turned
		// away before the upgrade with no payload.
		if !sessionService.IsValidActiveSession(sessionID) {
			log.Printf("Rejecting connection to session %s: not found or inactive", sessionID)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for session %s: %v", sessionID, err)
			return
		}

		hub.RegisterClient(conn, sessionID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
