package service

import (
	"testing"
	"time"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/pkg/database"
	"cryptoseven_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// newTestDB 内存 sqlite，限制单连接避免连接池各自拿到独立内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.AdminEmail = "admin@example.com"
	cfg.JWT.Secret = "unit-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Course.CompletionBufferMinutes = 3
	cfg.Referral.BaseURL = "http://localhost:3000"
	return cfg
}

func seedUser(t *testing.T, db *gorm.DB, username string, role model.UserRole) *model.User {
	t.Helper()
	now := time.Now()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		AuthProvider: "email",
		ReferralCode: username + "-code",
		DayStreak:    1,
		LastLogin:    now,
		LastSeen:     now,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// newTestLeaderboard 测试里不配 Redis，读写全部走数据库路径
func newTestLeaderboard(db *gorm.DB) *LeaderboardService {
	return NewLeaderboardService(
		repository.NewLeaderboardRepository(db),
		repository.NewUserRepository(db),
		repository.NewCTFRepository(db),
		nil,
	)
}
