package service

import (
	"fmt"
	"testing"
	"time"

	"cryptoseven_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAwardPointsUpdatesBoardBySource(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)
	user := seedUser(t, db, "alice", model.Noobies)

	var total int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = svc.AwardPoints(tx, user.ID, 120, SourceQuiz)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 120, total)

	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = svc.AwardPoints(tx, user.ID, 80, SourceCTF)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 200, total)

	var entry model.GlobalLeaderboardEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	assert.Equal(t, 120, entry.TotalQuizPoint)
	assert.Equal(t, 80, entry.TotalCTFPoint)
	assert.Equal(t, 200, entry.TotalPoint)
}

func TestAwardPointsPromotesRank(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)
	user := seedUser(t, db, "alice", model.Noobies)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AwardPoints(tx, user.ID, 499, SourceQuiz)
		return err
	})
	require.NoError(t, err)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, model.Noobies, fresh.Role)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AwardPoints(tx, user.ID, 1, SourceQuiz)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, model.Amateur, fresh.Role)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AwardPoints(tx, user.ID, 1500, SourceCTF)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, model.Hacker, fresh.Role)
}

func TestAwardPointsAdminStaysAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)
	admin := seedUser(t, db, "root", model.Admin)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AwardPoints(tx, admin.ID, 3000, SourceCTF)
		return err
	})
	require.NoError(t, err)

	var fresh model.User
	require.NoError(t, db.First(&fresh, admin.ID).Error)
	assert.Equal(t, model.Admin, fresh.Role)
	assert.Equal(t, 3000, fresh.CumulativePoint)

	// admin 不上全局榜
	var count int64
	require.NoError(t, db.Model(&model.GlobalLeaderboardEntry{}).Where("user_id = ?", admin.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAwardOffBoardPoints(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)
	user := seedUser(t, db, "alice", model.Noobies)

	var total int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = svc.AwardOffBoardPoints(tx, user.ID, 600)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 600, total)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, model.Amateur, fresh.Role)

	// 积分不写全局榜
	var count int64
	require.NoError(t, db.Model(&model.GlobalLeaderboardEntry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRankForPoints(t *testing.T) {
	assert.Equal(t, model.Noobies, rankForPoints(0))
	assert.Equal(t, model.Noobies, rankForPoints(499))
	assert.Equal(t, model.Amateur, rankForPoints(500))
	assert.Equal(t, model.Amateur, rankForPoints(1999))
	assert.Equal(t, model.Hacker, rankForPoints(2000))
}

func TestGlobalLeaderboardViewerSplice(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)

	// 12 名用户，积分递减；第 12 名是查看者
	var viewerID uint
	for i := 0; i < 12; i++ {
		user := seedUser(t, db, fmt.Sprintf("player%02d", i), model.Noobies)
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.AwardPoints(tx, user.ID, 240-i*20, SourceQuiz)
			return err
		})
		require.NoError(t, err)
		if i == 11 {
			viewerID = user.ID
		}
	}

	rows, err := svc.GetGlobalLeaderboard(viewerID)
	require.NoError(t, err)
	require.Len(t, rows, 10)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 240, rows[0].TotalPoint)
	for i := 0; i < 9; i++ {
		assert.False(t, rows[i].IsViewer)
	}

	last := rows[9]
	assert.Equal(t, viewerID, last.UserID)
	assert.Equal(t, 12, last.Rank)
	assert.Equal(t, 20, last.TotalPoint)
	assert.True(t, last.IsViewer)
}

func TestGlobalLeaderboardViewerInTop(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)

	first := seedUser(t, db, "first", model.Noobies)
	second := seedUser(t, db, "second", model.Noobies)
	for _, u := range []struct {
		id     uint
		points int
	}{{first.ID, 300}, {second.ID, 100}} {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.AwardPoints(tx, u.id, u.points, SourceCTF)
			return err
		})
		require.NoError(t, err)
	}

	rows, err := svc.GetGlobalLeaderboard(second.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].IsViewer)
	assert.True(t, rows[1].IsViewer)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestGlobalLeaderboardAnonymous(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)

	user := seedUser(t, db, "alice", model.Noobies)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AwardPoints(tx, user.ID, 50, SourceQuiz)
		return err
	})
	require.NoError(t, err)

	rows, err := svc.GetGlobalLeaderboard(0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsViewer)
}

func TestGlobalLeaderboardCountsFlags(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)
	user := seedUser(t, db, "alice", model.Noobies)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AwardPoints(tx, user.ID, 100, SourceCTF)
		return err
	})
	require.NoError(t, err)
	for i := uint(1); i <= 3; i++ {
		require.NoError(t, db.Create(&model.CTFSolve{
			UserID: user.ID, QuestionID: i, CTFID: 1, Points: 10, SolvedAt: time.Now(),
		}).Error)
	}

	rows, err := svc.GetGlobalLeaderboard(0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].FlagsCaptured)
}

func TestRebuildWithoutRedisIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLeaderboard(db)
	require.NoError(t, svc.Rebuild())
}
