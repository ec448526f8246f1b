package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillhub/skillhub-api/model"
)

func setupBlacklistDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.JWTTokenBlacklist{}))
	return db
}

func createBlacklistUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := model.User{Email: "user@skillhub.io", FullName: "User", Role: model.RoleStudent, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestRevokeAndCheckToken(t *testing.T) {
	db := setupBlacklistDB(t)
	blacklist := NewTokenBlacklist(db)
	user := createBlacklistUser(t, db)

	revoked, err := blacklist.IsTokenRevoked("jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeToken("jti-1", user.ID, "access", time.Now().Add(time.Hour), "logout"))

	revoked, err = blacklist.IsTokenRevoked("jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestExpiredBlacklistEntryNoLongerBlocks(t *testing.T) {
	db := setupBlacklistDB(t)
	blacklist := NewTokenBlacklist(db)
	user := createBlacklistUser(t, db)

	// An entry past its expiry is moot; the token itself is already invalid.
	require.NoError(t, blacklist.RevokeToken("jti-old", user.ID, "access", time.Now().Add(-time.Minute), "logout"))

	revoked, err := blacklist.IsTokenRevoked("jti-old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeAllUserTokensBumpsVersion(t *testing.T) {
	db := setupBlacklistDB(t)
	blacklist := NewTokenBlacklist(db)
	user := createBlacklistUser(t, db)

	require.NoError(t, blacklist.RevokeAllUserTokens(user.ID))

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, user.TokenVersion+1, reloaded.TokenVersion)
}

func TestCleanupExpiredTokens(t *testing.T) {
	db := setupBlacklistDB(t)
	blacklist := NewTokenBlacklist(db)
	user := createBlacklistUser(t, db)

	require.NoError(t, blacklist.RevokeToken("jti-live", user.ID, "access", time.Now().Add(time.Hour), "logout"))
	require.NoError(t, blacklist.RevokeToken("jti-dead", user.ID, "access", time.Now().Add(-time.Hour), "logout"))

	removed, err := blacklist.CleanupExpiredTokens()
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	var count int64
	require.NoError(t, db.Model(&model.JWTTokenBlacklist{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
