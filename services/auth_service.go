package services

import (
	"errors"
	"time"

	"teamquiz/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCode = errors.New("invalid code")

// AuthService validates admin codes and team join codes. Admin codes are
// stored bcrypt-hashed; a successful login is exchanged for a short-lived
// JWT that the admin middleware checks on control endpoints.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

func (s *AuthService) AdminLogin(code string) (string, error) {
	var codes []models.AdminCode
	if err := s.db.Where("is_active = ?", true).Find(&codes).Error; err != nil {
		return "", err
	}

	for _, ac := range codes {
		if bcrypt.CompareHashAndPassword([]byte(ac.CodeHash), []byte(code)) == nil {
			return s.issueToken()
		}
	}
	return "", ErrInvalidCode
}

func (s *AuthService) issueToken() (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// IsValidAdminCode checks a raw code against the active hashes without
// issuing a token. Used where a header-supplied code gates field
// visibility rather than a whole endpoint.
func (s *AuthService) IsValidAdminCode(code string) bool {
	if code == "" {
		return false
	}

	var codes []models.AdminCode
	if err := s.db.Where("is_active = ?", true).Find(&codes).Error; err != nil {
		return false
	}

	for _, ac := range codes {
		if bcrypt.CompareHashAndPassword([]byte(ac.CodeHash), []byte(code)) == nil {
			return true
		}
	}
	return false
}

// TeamLogin resolves a join code to its team.
func (s *AuthService) TeamLogin(code string) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	return &team, nil
}

// EnsureAdminCode creates an active admin code if none with this value
// exists yet. Called at startup when ADMIN_CODE is configured, so a fresh
// deployment is usable without manual seeding.
func (s *AuthService) EnsureAdminCode(code string) error {
	var codes []models.AdminCode
	if err := s.db.Where("is_active = ?", true).Find(&codes).Error; err != nil {
		return err
	}

	for _, ac := range codes {
		if bcrypt.CompareHashAndPassword([]byte(ac.CodeHash), []byte(code)) == nil {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.Create(&models.AdminCode{CodeHash: string(hash), IsActive: true}).Error
}
