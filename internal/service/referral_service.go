package service

import (
	"errors"
	"fmt"
	"sort"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferralService 邀请链接、点击归因与阶梯奖励
type ReferralService struct {
	ReferralRepo *repository.ReferralRepository
	UserRepo     *repository.UserRepository
	Leaderboard  *LeaderboardService
	Config       *config.Config
}

func NewReferralService(
	referralRepo *repository.ReferralRepository,
	userRepo *repository.UserRepository,
	leaderboard *LeaderboardService,
	cfg *config.Config,
) *ReferralService {
	return &ReferralService{
		ReferralRepo: referralRepo,
		UserRepo:     userRepo,
		Leaderboard:  leaderboard,
		Config:       cfg,
	}
}

// TierState 单档奖励状态
type TierState struct {
	Tier    int  `json:"tier"`
	Points  int  `json:"points"`
	Reached bool `json:"reached"`
	Claimed bool `json:"claimed"`
}

// ReferralInfo 我的邀请面板
type ReferralInfo struct {
	Code        string      `json:"code"`
	Link        string      `json:"link"`
	Clicks      int         `json:"clicks"`
	JoinedCount int64       `json:"joinedCount"`
	Tiers       []TierState `json:"tiers"`
}

func (s *ReferralService) GetInfo(userID uint) (*ReferralInfo, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	joined, err := s.ReferralRepo.CountByReferrer(userID)
	if err != nil {
		return nil, err
	}

	rewards, err := s.ReferralRepo.FindTierRewards(userID)
	if err != nil {
		return nil, err
	}
	claimed := map[int]bool{}
	for _, r := range rewards {
		claimed[r.Tier] = true
	}

	tiers := make([]TierState, 0, len(util.ReferralTierPoints))
	for tier, points := range util.ReferralTierPoints {
		tiers = append(tiers, TierState{
			Tier:    tier,
			Points:  points,
			Reached: joined >= int64(tier),
			Claimed: claimed[tier],
		})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Tier < tiers[j].Tier })

	return &ReferralInfo{
		Code:        user.ReferralCode,
		Link:        fmt.Sprintf("%s/register?ref=%s", s.Config.Referral.BaseURL, user.ReferralCode),
		Clicks:      user.ReferralClicks,
		JoinedCount: joined,
		Tiers:       tiers,
	}, nil
}

// RecordClick 邀请链接点击计数，按邀请码定位邀请人，匿名可调
func (s *ReferralService) RecordClick(code string) error {
	user, err := s.UserRepo.FindByReferralCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrReferralCodeInvalid
		}
		return err
	}
	return s.UserRepo.IncrementReferralClicks(user.ID)
}

// ClaimTier 领取阶梯奖励：必须达到人数门槛，(user, tier) 唯一保证只领一次，
// 领取行与积分发放在同一事务内
func (s *ReferralService) ClaimTier(userID uint, tier int) (*TierState, error) {
	points, ok := util.ReferralTierPoints[tier]
	if !ok {
		return nil, util.ErrTierNotReached
	}

	joined, err := s.ReferralRepo.CountByReferrer(userID)
	if err != nil {
		return nil, err
	}
	if joined < int64(tier) {
		return nil, util.ErrTierNotReached
	}

	if _, err := s.ReferralRepo.FindTierReward(userID, tier); err == nil {
		return nil, util.ErrTierAlreadyClaimed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = s.ReferralRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.ReferralTierReward{
			UserID: userID,
			Tier:   tier,
			Points: points,
		}).Error; err != nil {
			return err
		}
		_, err = s.Leaderboard.AwardOffBoardPoints(tx, userID, points)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("邀请奖励领取",
		zap.Uint("user_id", userID),
		zap.Int("tier", tier),
		zap.Int("points", points))

	return &TierState{Tier: tier, Points: points, Reached: true, Claimed: true}, nil
}
