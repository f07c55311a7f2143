package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const globalLeaderboardKey = "leaderboard:global"

// PointSource 积分来源，决定写入全局榜的哪一列
type PointSource string

const (
	SourceQuiz PointSource = "quiz"
	SourceCTF  PointSource = "ctf"
)

// LeaderboardService 维护全局积分榜。写路径走增量：每次发分在同一事务内
// 更新 global_leaderboard 行，事务提交后把新总分同步进 Redis ZSET；
// 读路径优先 Redis，未配置 Redis 时退化为直接扫库。
type LeaderboardService struct {
	LeaderboardRepo *repository.LeaderboardRepository
	UserRepo        *repository.UserRepository
	CTFRepo         *repository.CTFRepository
	Redis           *redis.Client
}

func NewLeaderboardService(
	leaderboardRepo *repository.LeaderboardRepository,
	userRepo *repository.UserRepository,
	ctfRepo *repository.CTFRepository,
	redisClient *redis.Client,
) *LeaderboardService {
	return &LeaderboardService{
		LeaderboardRepo: leaderboardRepo,
		UserRepo:        userRepo,
		CTFRepo:         ctfRepo,
		Redis:           redisClient,
	}
}

// AwardPoints 在调用方事务内发分：自增用户累计积分、按来源更新全局榜行、
// 积分过阈值时晋升段位。返回发分后的累计积分，供提交后同步 Redis。
// admin 不上榜但积分照记。
func (s *LeaderboardService) AwardPoints(tx *gorm.DB, userID uint, points int, source PointSource) (int, error) {
	if err := s.UserRepo.AddPoints(tx, userID, points); err != nil {
		return 0, err
	}

	var user model.User
	if err := tx.First(&user, userID).Error; err != nil {
		return 0, err
	}

	if user.Role != model.Admin {
		if newRole := rankForPoints(user.CumulativePoint); newRole != user.Role {
			if err := tx.Model(&model.User{}).Where("id = ?", userID).
				Update("role", newRole).Error; err != nil {
				return 0, err
			}
			logger.Log.Info("段位晋升",
				zap.Uint("user_id", userID),
				zap.String("role", string(newRole)),
				zap.Int("points", user.CumulativePoint))
		}

		entry := model.GlobalLeaderboardEntry{
			UserID:        userID,
			Username:      user.Username,
			AvatarPicture: user.AvatarPicture,
			TotalPoint:    points,
		}
		assignments := map[string]interface{}{
			"total_point": gorm.Expr("total_point + ?", points),
			"username":    user.Username,
			"updated_at":  time.Now(),
		}
		if source == SourceQuiz {
			entry.TotalQuizPoint = points
			assignments["total_quiz_point"] = gorm.Expr("total_quiz_point + ?", points)
		} else {
			entry.TotalCTFPoint = points
			assignments["total_ctf_point"] = gorm.Expr("total_ctf_point + ?", points)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).Create(&entry).Error; err != nil {
			return 0, err
		}
	}

	return user.CumulativePoint, nil
}

// AwardOffBoardPoints 课程完成、邀请奖励等不计入全局榜的积分：
// 只动用户累计积分与段位，全局榜保持 测验+CTF 的口径
func (s *LeaderboardService) AwardOffBoardPoints(tx *gorm.DB, userID uint, points int) (int, error) {
	if err := s.UserRepo.AddPoints(tx, userID, points); err != nil {
		return 0, err
	}
	var user model.User
	if err := tx.First(&user, userID).Error; err != nil {
		return 0, err
	}
	if user.Role != model.Admin {
		if newRole := rankForPoints(user.CumulativePoint); newRole != user.Role {
			if err := tx.Model(&model.User{}).Where("id = ?", userID).
				Update("role", newRole).Error; err != nil {
				return 0, err
			}
		}
	}
	return user.CumulativePoint, nil
}

// rankForPoints 积分对应的段位；只升不降由调用路径保证（积分单调递增）
func rankForPoints(points int) model.UserRole {
	switch {
	case points >= util.HackerThreshold:
		return model.Hacker
	case points >= util.AmateurThreshold:
		return model.Amateur
	default:
		return model.Noobies
	}
}

// SyncScore 事务提交后将新总分写入 Redis，失败只记日志不影响主流程
func (s *LeaderboardService) SyncScore(userID uint, totalPoint int) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Redis.ZAdd(ctx, globalLeaderboardKey, &redis.Z{
		Score:  float64(totalPoint),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
	if err != nil {
		logger.Log.Warn("排行榜 Redis 同步失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// LeaderboardRow 全局榜单行
type LeaderboardRow struct {
	Rank          int    `json:"rank"`
	UserID        uint   `json:"userId"`
	Username      string `json:"username"`
	AvatarPicture string `json:"avatarPicture"`
	TotalPoint    int    `json:"totalPoint"`
	FlagsCaptured int64  `json:"flagsCaptured"`
	IsViewer      bool   `json:"isViewer,omitempty"`
}

// GetGlobalLeaderboard 返回前 10 名；登录用户不在前 10 时，
// 以真实名次替换第 10 行（榜单拼接）。
func (s *LeaderboardService) GetGlobalLeaderboard(viewerID uint) ([]LeaderboardRow, error) {
	rows, err := s.topFromRedis(10)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("排行榜 Redis 读取失败，回退数据库", zap.Error(err))
		}
		rows = nil
	}
	if rows == nil {
		rows, err = s.topFromDB(10)
		if err != nil {
			return nil, err
		}
	}

	if viewerID == 0 {
		return rows, nil
	}

	for i := range rows {
		if rows[i].UserID == viewerID {
			rows[i].IsViewer = true
			return rows, nil
		}
	}

	viewerRow, err := s.viewerRow(viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rows, nil
		}
		return nil, err
	}
	if len(rows) >= 10 {
		rows[9] = *viewerRow
	} else {
		rows = append(rows, *viewerRow)
	}
	return rows, nil
}

func (s *LeaderboardService) topFromRedis(limit int) ([]LeaderboardRow, error) {
	if s.Redis == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	members, err := s.Redis.ZRevRangeWithScores(ctx, globalLeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	rows := make([]LeaderboardRow, 0, len(members))
	for i, m := range members {
		id, err := strconv.ParseUint(fmt.Sprint(m.Member), 10, 64)
		if err != nil {
			continue
		}
		entry, err := s.LeaderboardRepo.FindGlobalEntry(uint(id))
		if err != nil {
			continue
		}
		flags, _ := s.CTFRepo.CountFlagsByUser(uint(id))
		rows = append(rows, LeaderboardRow{
			Rank:          i + 1,
			UserID:        uint(id),
			Username:      entry.Username,
			AvatarPicture: entry.AvatarPicture,
			TotalPoint:    int(m.Score),
			FlagsCaptured: flags,
		})
	}
	return rows, nil
}

func (s *LeaderboardService) topFromDB(limit int) ([]LeaderboardRow, error) {
	entries, err := s.LeaderboardRepo.FindGlobalEntries(limit)
	if err != nil {
		return nil, err
	}
	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		flags, _ := s.CTFRepo.CountFlagsByUser(e.UserID)
		rows = append(rows, LeaderboardRow{
			Rank:          i + 1,
			UserID:        e.UserID,
			Username:      e.Username,
			AvatarPicture: e.AvatarPicture,
			TotalPoint:    e.TotalPoint,
			FlagsCaptured: flags,
		})
	}
	return rows, nil
}

func (s *LeaderboardService) viewerRow(viewerID uint) (*LeaderboardRow, error) {
	entry, err := s.LeaderboardRepo.FindGlobalEntry(viewerID)
	if err != nil {
		return nil, err
	}
	rank, err := s.LeaderboardRepo.GlobalRank(entry)
	if err != nil {
		return nil, err
	}
	flags, _ := s.CTFRepo.CountFlagsByUser(viewerID)
	return &LeaderboardRow{
		Rank:          int(rank),
		UserID:        entry.UserID,
		Username:      entry.Username,
		AvatarPicture: entry.AvatarPicture,
		TotalPoint:    entry.TotalPoint,
		FlagsCaptured: flags,
		IsViewer:      true,
	}, nil
}

// Rebuild 以数据库为准重建 Redis ZSET，后台对账任务周期性调用，
// 兜底在线增量可能产生的漂移
func (s *LeaderboardService) Rebuild() error {
	if s.Redis == nil {
		return nil
	}
	entries, err := s.LeaderboardRepo.FindGlobalEntries(0)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipe := s.Redis.TxPipeline()
	pipe.Del(ctx, globalLeaderboardKey)
	for _, e := range entries {
		pipe.ZAdd(ctx, globalLeaderboardKey, &redis.Z{
			Score:  float64(e.TotalPoint),
			Member: strconv.FormatUint(uint64(e.UserID), 10),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	logger.Log.Debug("排行榜重建完成", zap.Int("entries", len(entries)))
	return nil
}
