package main

import (
	"log"

	"teamquiz/config"
	"teamquiz/handlers"
	"teamquiz/middleware"
	"teamquiz/models"
	"teamquiz/routes"
	"teamquiz/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.GameSession{},
		&models.Team{},
		&models.Question{},
		&models.Answer{},
		&models.AdminCode{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	sessionService := services.NewSessionService(db, redisClient)
	questionService := services.NewQuestionService(db)
	answerService := services.NewAnswerService(db, sessionService)

	// Seed the admin code for fresh deployments
	if cfg.AdminCode != "" {
		if err := authService.EnsureAdminCode(cfg.AdminCode); err != nil {
			log.Fatal("Failed to seed admin code:", err)
		}
	}

	// Initialize WebSocket hub
	hub := services.NewHub(sessionService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(sessionService, hub)
	teamHandler := handlers.NewTeamHandler(sessionService, hub)
	questionHandler := handlers.NewQuestionHandler(questionService, authService)
	answerHandler := handlers.NewAnswerHandler(answerService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, sessionHandler, teamHandler, questionHandler, answerHandler, hub, sessionService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
