package services

import (
	"fmt"
	"testing"

	"teamquiz/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique name per test so parallel tests never share a database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.GameSession{},
		&models.Team{},
		&models.Question{},
		&models.Answer{},
		&models.AdminCode{},
	))
	return db
}

func newTestSessionService(t *testing.T) *SessionService {
	t.Helper()
	return NewSessionService(newTestDB(t), nil)
}

// seedSession creates an activated session with one team per given id.
// Team names are derived from the ids.
func seedSession(t *testing.T, svc *SessionService, teamIDs ...string) *models.GameSession {
	t.Helper()

	session, err := svc.CreateSession("Friday Night Quiz")
	require.NoError(t, err)
	require.NoError(t, svc.Activate(session.ID))

	for _, id := range teamIDs {
		_, err := svc.CreateTeam(session.ID, id, "Team "+id)
		require.NoError(t, err)
	}
	return session
}

func seedQuestion(t *testing.T, svc *SessionService, round int) *models.Question {
	t.Helper()

	question := models.Question{
		ID:     uuid.NewString(),
		Round:  round,
		Text:   "What year was the transistor invented?",
		Answer: "1947",
	}
	require.NoError(t, svc.db.Create(&question).Error)
	return &question
}
