package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"teamquiz/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidStatus    = errors.New("invalid team status")
)

// SessionService is the authoritative store for session and team state.
// Every mutation of a single session runs under that session's mutex, so
// check-then-set sequences (the buzzer in particular) cannot lose updates.
// Activate spans all sessions and takes its own global mutex instead.
type SessionService struct {
	db    *gorm.DB
	redis *redis.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	activateMu sync.Mutex
}

func NewSessionService(db *gorm.DB, redis *redis.Client) *SessionService {
	return &SessionService{
		db:    db,
		redis: redis,
		locks: make(map[string]*sync.Mutex),
	}
}

// Snapshot is the complete point-in-time view of a session plus its teams,
// ordered by score. It is what every client in the session's group receives
// after each accepted mutation.
type Snapshot struct {
	Session *models.GameSession `json:"session"`
	Teams   []models.Team       `json:"teams"`
}

func (s *SessionService) lockFor(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

func asNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// bump increments the session's version counter. Each accepted mutation
// bumps exactly once, which gives observers a total order over snapshots.
func bump(tx *gorm.DB, sessionID string) error {
	return tx.Model(&models.GameSession{}).Where("id = ?", sessionID).
		UpdateColumn("version", gorm.Expr("version + 1")).Error
}

func (s *SessionService) CreateSession(name string) (*models.GameSession, error) {
	session := models.GameSession{
		ID:           uuid.NewString(),
		Name:         name,
		CurrentRound: 1,
		RoundType:    models.RoundGeneral,
	}

	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionService) Get(sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, asNotFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

func (s *SessionService) ActiveSession() (*models.GameSession, error) {
	var session models.GameSession
	if err := s.db.First(&session, "is_active = ?", true).Error; err != nil {
		return nil, asNotFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

// IsValidActiveSession reports whether a session exists and is active.
// Connections are only admitted to groups of active sessions.
func (s *SessionService) IsValidActiveSession(sessionID string) bool {
	var count int64
	s.db.Model(&models.GameSession{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Count(&count)
	return count > 0
}

// Activate marks one session active and every other session inactive in a
// single transaction. The dedicated mutex makes the cross-row update a
// global critical section: at most one session is active at any time.
func (s *SessionService) Activate(sessionID string) error {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		if err := tx.Model(&models.GameSession{}).
			Where("is_active = ? AND id <> ?", true, sessionID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"is_active": true,
			"version":   gorm.Expr("version + 1"),
		}).Error
	})
}

// Snapshot reads the session and its teams under the session mutex, so the
// result always reflects a fully committed mutation and never interleaves
// two concurrent ones.
func (s *SessionService) Snapshot(sessionID string) (*Snapshot, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.snapshotLocked(sessionID)
}

func (s *SessionService) snapshotLocked(sessionID string) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		var teams []models.Team
		if err := tx.Where("session_id = ?", sessionID).
			Order("score DESC, id ASC").
			Find(&teams).Error; err != nil {
			return err
		}

		if session.ActiveTeamID != nil {
			for i := range teams {
				if teams[i].ID == *session.ActiveTeamID {
					session.ActiveTeamName = teams[i].Name
					break
				}
			}
		}

		snap.Session = &session
		snap.Teams = teams
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheSnapshot(&snap)
	return &snap, nil
}

// CachedSnapshot serves reads that tolerate slightly stale data (REST state
// polling). Falls back to an authoritative read on a cache miss.
func (s *SessionService) CachedSnapshot(sessionID string) (*Snapshot, error) {
	if s.redis != nil {
		data, err := s.redis.Get(context.Background(), "session:"+sessionID).Result()
		if err == nil {
			var snap Snapshot
			if err := json.Unmarshal([]byte(data), &snap); err == nil {
				return &snap, nil
			}
			log.Printf("Discarding unreadable cached snapshot for session %s", sessionID)
		} else if err != redis.Nil {
			log.Printf("Redis error reading snapshot for session %s: %v", sessionID, err)
		}
	}

	return s.Snapshot(sessionID)
}

func (s *SessionService) cacheSnapshot(snap *Snapshot) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Failed to marshal snapshot for session %s: %v", snap.Session.ID, err)
		return
	}

	if err := s.redis.Set(context.Background(), "session:"+snap.Session.ID, data, 2*time.Hour).Err(); err != nil {
		log.Printf("Failed to cache snapshot for session %s: %v", snap.Session.ID, err)
	}
}

// AdvanceQuestion points the session at a new current question and resets
// the buzzer: active team cleared, buzzer unlocked, buzzed teams back to
// waiting. Issuing it twice with the same question id is a no-op the second
// time apart from the version bump.
func (s *SessionService) AdvanceQuestion(sessionID, questionID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		var question models.Question
		if err := tx.First(&question, "id = ?", questionID).Error; err != nil {
			return asNotFound(err, ErrQuestionNotFound)
		}

		if err := resetBuzzedTeams(tx, sessionID); err != nil {
			return err
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"current_question_id": questionID,
			"active_team_id":      nil,
			"buzzer_locked":       false,
			"version":             gorm.Expr("version + 1"),
		}).Error
	})
}

// ResetBuzzer unlocks the buzzer without changing the current question.
func (s *SessionService) ResetBuzzer(sessionID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		if err := resetBuzzedTeams(tx, sessionID); err != nil {
			return err
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"active_team_id": nil,
			"buzzer_locked":  false,
			"version":        gorm.Expr("version + 1"),
		}).Error
	})
}

func resetBuzzedTeams(tx *gorm.DB, sessionID string) error {
	return tx.Model(&models.Team{}).
		Where("session_id = ? AND status = ?", sessionID, models.StatusBuzzed).
		Update("status", models.StatusWaiting).Error
}

// Buzz is the arbitration point for concurrent buzz attempts. The first
// caller to take the session mutex while the buzzer is unlocked wins: the
// session locks onto that team and the team is marked buzzed. Everyone
// else gets changed=false until the next reset.
func (s *SessionService) Buzz(sessionID, teamID string) (bool, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		if session.BuzzerLocked {
			return nil
		}

		var team models.Team
		if err := tx.First(&team, "id = ? AND session_id = ?", teamID, sessionID).Error; err != nil {
			return asNotFound(err, ErrTeamNotFound)
		}

		if err := tx.Model(&team).Update("status", models.StatusBuzzed).Error; err != nil {
			return err
		}

		if err := tx.Model(&session).Updates(map[string]interface{}{
			"active_team_id": team.ID,
			"buzzer_locked":  true,
			"version":        gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}

		changed = true
		return nil
	})
	return changed, err
}

// SetActiveTeam hands the floor to one team: all teams in the session go
// back to waiting and the chosen team starts answering.
func (s *SessionService) SetActiveTeam(sessionID, teamID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		var team models.Team
		if err := tx.First(&team, "id = ? AND session_id = ?", teamID, sessionID).Error; err != nil {
			return asNotFound(err, ErrTeamNotFound)
		}

		if err := tx.Model(&models.Team{}).
			Where("session_id = ?", sessionID).
			Update("status", models.StatusWaiting).Error; err != nil {
			return err
		}

		if err := tx.Model(&team).Update("status", models.StatusAnswering).Error; err != nil {
			return err
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"active_team_id": team.ID,
			"version":        gorm.Expr("version + 1"),
		}).Error
	})
}

// AdjustScore adds points (possibly negative) to a team's score, clamped
// at zero. Returns the team with its new score.
func (s *SessionService) AdjustScore(sessionID, teamID string, points int) (*models.Team, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	var team models.Team
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, "id = ? AND session_id = ?", teamID, sessionID).Error; err != nil {
			return asNotFound(err, ErrTeamNotFound)
		}

		newScore := team.Score + points
		if newScore < 0 {
			newScore = 0
		}
		team.Score = newScore

		if err := tx.Model(&models.Team{}).Where("id = ?", teamID).
			Update("score", newScore).Error; err != nil {
			return err
		}

		return bump(tx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// SetStatus applies an admin-driven status transition. Values outside the
// enumerated set are rejected before anything is touched.
func (s *SessionService) SetStatus(sessionID, teamID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, "id = ? AND session_id = ?", teamID, sessionID).Error; err != nil {
			return asNotFound(err, ErrTeamNotFound)
		}

		if err := tx.Model(&team).Update("status", status).Error; err != nil {
			return err
		}

		return bump(tx, sessionID)
	})
}

// SetRound switches the session to a new round. The buzzer is only enabled
// during the buzzer round, and the question/buzzer state is cleared so the
// round starts fresh.
func (s *SessionService) SetRound(sessionID string, round int) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		if err := resetBuzzedTeams(tx, sessionID); err != nil {
			return err
		}

		roundType := models.RoundTypeFor(round)
		return tx.Model(&session).Updates(map[string]interface{}{
			"current_round":       round,
			"round_type":          roundType,
			"buzzer_enabled":      roundType == models.RoundBuzzer,
			"current_question_id": nil,
			"active_team_id":      nil,
			"buzzer_locked":       false,
			"version":             gorm.Expr("version + 1"),
		}).Error
	})
}

func (s *SessionService) StartGame(sessionID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"game_started": true,
			"version":      gorm.Expr("version + 1"),
		}).Error
	})
}

// SetTimer records advisory timer display state. Nothing enforces it; the
// countdown itself travels as timer frames over the group.
func (s *SessionService) SetTimer(sessionID string, seconds int, running bool) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"timer_seconds":    seconds,
			"is_timer_running": running,
			"version":          gorm.Expr("version + 1"),
		}).Error
	})
}

// CreateTeam adds a team to a session with a freshly generated join code.
// Pass teamID to keep well-known slugs (team_a ... team_d); otherwise a
// uuid is assigned.
func (s *SessionService) CreateTeam(sessionID, teamID, name string) (*models.Team, error) {
	if _, err := s.Get(sessionID); err != nil {
		return nil, err
	}

	if teamID == "" {
		teamID = uuid.NewString()
	}

	team := models.Team{
		ID:        teamID,
		SessionID: sessionID,
		Name:      name,
		Status:    models.StatusWaiting,
	}

	// Regenerate on the off chance two codes collide on the unique index.
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		team.Code = generateCode()
		if err = s.db.Create(&team).Error; err == nil {
			return &team, nil
		}
	}
	return nil, err
}

func (s *SessionService) Teams(sessionID string) ([]models.Team, error) {
	if _, err := s.Get(sessionID); err != nil {
		return nil, err
	}

	var teams []models.Team
	err := s.db.Where("session_id = ?", sessionID).
		Order("score DESC, id ASC").
		Find(&teams).Error
	return teams, err
}

func (s *SessionService) TeamByCode(code string) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, "code = ?", code).Error; err != nil {
		return nil, asNotFound(err, ErrTeamNotFound)
	}
	return &team, nil
}

// ResetAllTeams zeroes every score, returns every team to waiting and
// releases the buzzer. Used by admins between games.
func (s *SessionService) ResetAllTeams(sessionID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.GameSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return asNotFound(err, ErrSessionNotFound)
		}

		if err := tx.Model(&models.Team{}).
			Where("session_id = ?", sessionID).
			Updates(map[string]interface{}{
				"score":  0,
				"status": models.StatusWaiting,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&session).Updates(map[string]interface{}{
			"active_team_id": nil,
			"buzzer_locked":  false,
			"version":        gorm.Expr("version + 1"),
		}).Error
	})
}

func generateCode() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:6]
}
