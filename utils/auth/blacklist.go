package auth

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
)

// TokenBlacklist manages revoked JWT tokens backed by the database.
type TokenBlacklist struct {
	db *gorm.DB
}

// NewTokenBlacklist creates a new token blacklist
func NewTokenBlacklist(db *gorm.DB) *TokenBlacklist {
	return &TokenBlacklist{db: db}
}

// RevokeToken adds a token's JTI to the blacklist
func (tb *TokenBlacklist) RevokeToken(jti string, userID uint, tokenType string, expiresAt time.Time, reason string) error {
	entry := model.JWTTokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		TokenType: tokenType,
		ExpiresAt: expiresAt,
		Reason:    reason,
	}

	if err := tb.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsTokenRevoked checks if a token's JTI is blacklisted
func (tb *TokenBlacklist) IsTokenRevoked(jti string) (bool, error) {
	var count int64
	err := tb.db.Model(&model.JWTTokenBlacklist{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return count > 0, nil
}

// RevokeAllUserTokens increments the user's token version, invalidating
// every token issued before this call.
func (tb *TokenBlacklist) RevokeAllUserTokens(userID uint) error {
	err := tb.db.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}

// CleanupExpiredTokens removes blacklist entries whose tokens have expired.
// Called periodically by the cron manager.
func (tb *TokenBlacklist) CleanupExpiredTokens() (int64, error) {
	result := tb.db.Where("expires_at < ?", time.Now()).Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}
