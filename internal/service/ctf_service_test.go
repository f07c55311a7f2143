package service

import (
	"testing"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCTFService(db *gorm.DB) *CTFService {
	return NewCTFService(
		repository.NewCTFRepository(db),
		repository.NewUserRepository(db),
		repository.NewLeaderboardRepository(db),
		newTestLeaderboard(db),
	)
}

func seedActiveEvent(t *testing.T, db *gorm.DB) *model.CTFEvent {
	t.Helper()
	event := &model.CTFEvent{
		Title:     "Web 渗透入门赛",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		Type:      "public",
		Format:    model.Jeopardy,
		Status:    model.CTFActive,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedQuestion(t *testing.T, db *gorm.DB, ctfID uint, points int, flag string) *model.CTFQuestion {
	t.Helper()
	q := &model.CTFQuestion{
		CTFID:         ctfID,
		Title:         "Header Hunter",
		Category:      "web",
		Difficulty:    model.Easy,
		Points:        points,
		FlagHash:      util.HashFlag(flag),
		SecretMessage: "藏在响应头里",
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func TestCTFRegister(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	event := seedActiveEvent(t, db)

	reg, err := svc.Register(user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CTFRegistered, reg.Status)
	assert.Equal(t, 0, reg.Score)

	// 赛事榜占位行
	var entry model.CTFLeaderboardEntry
	require.NoError(t, db.Where("ctf_id = ? AND user_id = ?", event.ID, user.ID).First(&entry).Error)
	assert.Equal(t, "alice", entry.Username)
	assert.Equal(t, 0, entry.Score)

	// 全局榜占位行
	var global model.GlobalLeaderboardEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&global).Error)
	assert.Equal(t, 0, global.TotalPoint)

	_, err = svc.Register(user.ID, event.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyRegistered)
}

func TestCTFRegisterClosedEvent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "bob", model.Noobies)

	event := &model.CTFEvent{
		Title:     "已结束的比赛",
		StartDate: time.Now().Add(-48 * time.Hour),
		EndDate:   time.Now().Add(-24 * time.Hour),
		Status:    model.CTFCompleted,
	}
	require.NoError(t, db.Create(event).Error)

	_, err := svc.Register(user.ID, event.ID)
	assert.ErrorIs(t, err, util.ErrCTFNotActive)
}

func TestCTFRegisterAdminStaysOffGlobalBoard(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	admin := seedUser(t, db, "root", model.Admin)
	event := seedActiveEvent(t, db)

	_, err := svc.Register(admin.ID, event.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.GlobalLeaderboardEntry{}).Where("user_id = ?", admin.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitFlag(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	event := seedActiveEvent(t, db)
	question := seedQuestion(t, db, event.ID, 100, "flag{header_hunter}")

	_, err := svc.Register(user.ID, event.ID)
	require.NoError(t, err)

	result, err := svc.SubmitFlag(user.ID, event.ID, question.ID, "flag{header_hunter}")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 100, result.Points)
	assert.Equal(t, 100, result.TotalScore)
	assert.Equal(t, "藏在响应头里", result.SecretMessage)

	// 赛内进度
	var reg model.CTFRegistration
	require.NoError(t, db.Where("user_id = ? AND ctf_id = ?", user.ID, event.ID).First(&reg).Error)
	assert.Equal(t, 100, reg.Score)
	assert.Equal(t, model.CTFInProgress, reg.Status)

	// 赛事榜与解题时间
	var entry model.CTFLeaderboardEntry
	require.NoError(t, db.Where("ctf_id = ? AND user_id = ?", event.ID, user.ID).First(&entry).Error)
	assert.Equal(t, 100, entry.Score)
	assert.NotNil(t, entry.LastSolveAt)

	// 个人积分与全局榜
	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 100, fresh.CumulativePoint)

	var global model.GlobalLeaderboardEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&global).Error)
	assert.Equal(t, 100, global.TotalPoint)
	assert.Equal(t, 100, global.TotalCTFPoint)
	assert.Equal(t, 0, global.TotalQuizPoint)
}

func TestSubmitFlagWrong(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	event := seedActiveEvent(t, db)
	question := seedQuestion(t, db, event.ID, 100, "flag{right}")

	_, err := svc.Register(user.ID, event.ID)
	require.NoError(t, err)

	_, err = svc.SubmitFlag(user.ID, event.ID, question.ID, "flag{wrong}")
	assert.ErrorIs(t, err, util.ErrWrongFlag)

	// 错误提交不落任何状态
	var solves int64
	require.NoError(t, db.Model(&model.CTFSolve{}).Count(&solves).Error)
	assert.Zero(t, solves)

	var reg model.CTFRegistration
	require.NoError(t, db.Where("user_id = ? AND ctf_id = ?", user.ID, event.ID).First(&reg).Error)
	assert.Equal(t, 0, reg.Score)
}

func TestSubmitFlagReplay(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	event := seedActiveEvent(t, db)
	question := seedQuestion(t, db, event.ID, 100, "flag{once}")

	_, err := svc.Register(user.ID, event.ID)
	require.NoError(t, err)

	_, err = svc.SubmitFlag(user.ID, event.ID, question.ID, "flag{once}")
	require.NoError(t, err)

	_, err = svc.SubmitFlag(user.ID, event.ID, question.ID, "flag{once}")
	assert.ErrorIs(t, err, util.ErrAlreadySolved)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 100, fresh.CumulativePoint)
}

func TestSubmitFlagRequiresRegistration(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	event := seedActiveEvent(t, db)
	question := seedQuestion(t, db, event.ID, 100, "flag{x}")

	_, err := svc.SubmitFlag(user.ID, event.ID, question.ID, "flag{x}")
	assert.ErrorIs(t, err, util.ErrNotRegistered)
}

func TestSubmitFlagOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)

	event := &model.CTFEvent{
		Title:     "还没开赛",
		StartDate: time.Now().Add(time.Hour),
		EndDate:   time.Now().Add(2 * time.Hour),
		Status:    model.CTFUpcoming,
	}
	require.NoError(t, db.Create(event).Error)
	question := seedQuestion(t, db, event.ID, 100, "flag{x}")

	_, err := svc.SubmitFlag(user.ID, event.ID, question.ID, "flag{x}")
	assert.ErrorIs(t, err, util.ErrCTFNotActive)
}

func TestScoreboardViewerSplice(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	event := seedActiveEvent(t, db)

	// 12 名选手，分数递减；第 12 名是查看者
	base := time.Now().Add(-30 * time.Minute)
	var viewerID uint
	for i := 0; i < 12; i++ {
		user := seedUser(t, db, "player"+string(rune('a'+i)), model.Noobies)
		solveAt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&model.CTFLeaderboardEntry{
			CTFID:       event.ID,
			UserID:      user.ID,
			Username:    user.Username,
			Score:       1200 - i*100,
			LastSolveAt: &solveAt,
		}).Error)
		if i == 11 {
			viewerID = user.ID
		}
	}

	rows, err := svc.Scoreboard(event.ID, viewerID)
	require.NoError(t, err)
	require.Len(t, rows, 10)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1200, rows[0].Score)

	// 第 10 行被查看者真实名次替换
	last := rows[9]
	assert.Equal(t, viewerID, last.UserID)
	assert.Equal(t, 12, last.Rank)
	assert.Equal(t, 100, last.Score)
	assert.True(t, last.IsViewer)
}

func TestScoreboardTieBreakByFirstSolve(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	event := seedActiveEvent(t, db)

	early := seedUser(t, db, "early", model.Noobies)
	late := seedUser(t, db, "late", model.Noobies)

	earlyAt := time.Now().Add(-20 * time.Minute)
	lateAt := time.Now().Add(-5 * time.Minute)
	require.NoError(t, db.Create(&model.CTFLeaderboardEntry{
		CTFID: event.ID, UserID: late.ID, Username: "late", Score: 300, LastSolveAt: &lateAt,
	}).Error)
	require.NoError(t, db.Create(&model.CTFLeaderboardEntry{
		CTFID: event.ID, UserID: early.ID, Username: "early", Score: 300, LastSolveAt: &earlyAt,
	}).Error)

	rows, err := svc.Scoreboard(event.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, early.ID, rows[0].UserID)
	assert.Equal(t, late.ID, rows[1].UserID)
}

func TestFinishIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCTFService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	event := seedActiveEvent(t, db)

	_, err := svc.Register(user.ID, event.ID)
	require.NoError(t, err)

	first, err := svc.Finish(user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CTFSubmitted, first.Status)
	require.NotNil(t, first.SubmittedAt)
	submittedAt := *first.SubmittedAt

	second, err := svc.Finish(user.ID, event.ID)
	require.NoError(t, err)
	require.NotNil(t, second.SubmittedAt)
	assert.Equal(t, submittedAt.Unix(), second.SubmittedAt.Unix())
}

func TestStatusForWindow(t *testing.T) {
	now := time.Now()
	assert.Equal(t, model.CTFUpcoming, statusForWindow(now.Add(time.Hour), now.Add(2*time.Hour), now))
	assert.Equal(t, model.CTFActive, statusForWindow(now.Add(-time.Hour), now.Add(time.Hour), now))
	assert.Equal(t, model.CTFCompleted, statusForWindow(now.Add(-2*time.Hour), now.Add(-time.Hour), now))
}
