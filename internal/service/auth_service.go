package service

import (
	"errors"
	"time"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 处理注册、登录与第三方登录
type AuthService struct {
	UserRepo     *repository.UserRepository
	CheckinRepo  *repository.CheckinRepository
	ReferralRepo *repository.ReferralRepository
	Config       *config.Config
}

func NewAuthService(
	userRepo *repository.UserRepository,
	checkinRepo *repository.CheckinRepository,
	referralRepo *repository.ReferralRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		UserRepo:     userRepo,
		CheckinRepo:  checkinRepo,
		ReferralRepo: referralRepo,
		Config:       cfg,
	}
}

type RegisterInput struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referralCode"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register 创建新用户；带有效邀请码时在同一事务内落邀请归因
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if _, err := s.UserRepo.FindByEmail(input.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := model.Noobies
	if s.Config.Server.AdminEmail != "" && input.Email == s.Config.Server.AdminEmail {
		role = model.Admin
	}

	var referrer *model.User
	if input.ReferralCode != "" {
		referrer, err = s.UserRepo.FindByReferralCode(input.ReferralCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrReferralCodeInvalid
			}
			return nil, err
		}
	}

	now := time.Now()
	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		Password:     string(hashed),
		Role:         role,
		AuthProvider: "email",
		ReferralCode: util.GenerateReferralCode(),
		DayStreak:    1,
		LastLogin:    now,
		LastSeen:     now,
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
	}

	err = s.UserRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.Checkin{UserID: user.ID, CheckinAt: now, StreakDays: 1}).Error; err != nil {
			return err
		}
		if referrer != nil {
			return tx.Create(&model.Referral{
				ReferrerID:     referrer.ID,
				ReferredUserID: user.ID,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 校验口令，滚动连续签到天数后签发令牌
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, util.ErrUserNotFound
	}

	if user.Disabled {
		return nil, util.ErrUserDisabled
	}

	if err := s.rollStreak(user); err != nil {
		logger.Log.Warn("签到滚动失败", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return s.issueToken(user)
}

type OAuthInput struct {
	Provider string `json:"provider" binding:"required,oneof=google github"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Avatar   string `json:"avatar"`
}

// OAuthLogin 第三方登录：邮箱已存在则直接登录，否则按该 provider 建号
func (s *AuthService) OAuthLogin(input OAuthInput) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(input.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		now := time.Now()
		user = &model.User{
			Username:      input.Username,
			Email:         input.Email,
			Role:          model.Noobies,
			AvatarPicture: input.Avatar,
			AuthProvider:  input.Provider,
			ReferralCode:  util.GenerateReferralCode(),
			DayStreak:     1,
			LastLogin:     now,
			LastSeen:      now,
		}
		err = s.UserRepo.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			return tx.Create(&model.Checkin{UserID: user.ID, CheckinAt: now, StreakDays: 1}).Error
		})
		if err != nil {
			return nil, err
		}
		return s.issueToken(user)
	}

	if user.Disabled {
		return nil, util.ErrUserDisabled
	}

	if err := s.rollStreak(user); err != nil {
		logger.Log.Warn("签到滚动失败", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return s.issueToken(user)
}

// rollStreak 按自然日滚动连续签到：昨天签过+1，今天签过不动，断档归 1。
// 每个自然日只落一条签到记录。
func (s *AuthService) rollStreak(user *model.User) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	latest, err := s.CheckinRepo.FindLatest(user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	streak := 1
	alreadyToday := false
	if latest != nil {
		last := time.Date(latest.CheckinAt.Year(), latest.CheckinAt.Month(), latest.CheckinAt.Day(),
			0, 0, 0, 0, latest.CheckinAt.Location())
		switch {
		case last.Equal(today):
			streak = latest.StreakDays
			alreadyToday = true
		case last.Equal(today.AddDate(0, 0, -1)):
			streak = latest.StreakDays + 1
		}
	}

	user.DayStreak = streak
	user.LastLogin = now
	user.LastSeen = now

	return s.UserRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"day_streak": streak,
			"last_login": now,
			"last_seen":  now,
		}).Error; err != nil {
			return err
		}
		if !alreadyToday {
			return tx.Create(&model.Checkin{UserID: user.ID, CheckinAt: now, StreakDays: streak}).Error
		}
		return nil
	})
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
