package database

import (
	"fmt"
	"log"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

// Migrate 建表与索引，所有业务模型都在这里注册
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Checkin{},
		&model.Course{},
		&model.CourseModule{},
		&model.CourseProgress{},
		&model.VideoProgress{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizProgress{},
		&model.QuizAnswer{},
		&model.CTFEvent{},
		&model.CTFQuestion{},
		&model.CTFRegistration{},
		&model.CTFSolve{},
		&model.CTFLeaderboardEntry{},
		&model.GlobalLeaderboardEntry{},
		&model.ForumPost{},
		&model.ForumComment{},
		&model.ForumLike{},
		&model.Referral{},
		&model.ReferralTierReward{},
	)
}
