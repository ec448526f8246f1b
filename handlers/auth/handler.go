// Package auth exposes registration, login, token and profile endpoints.
package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/services"
	authutil "github.com/skillhub/skillhub-api/utils/auth"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklist            *authutil.TokenBlacklist
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	mailer               services.Mailer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklist:            authutil.NewTokenBlacklist(db),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
		mailer:               mailer,
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenPairResponse carries a freshly issued token pair
type TokenPairResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

const accessTokenLifetimeSeconds = 24 * 60 * 60
