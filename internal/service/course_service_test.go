package service

import (
	"testing"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCourseService(db *gorm.DB) *CourseService {
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewModuleRepository(db),
		repository.NewProgressRepository(db),
		repository.NewUserRepository(db),
		newTestLeaderboard(db),
		newTestConfig(),
	)
}

// seedCourse 两个模块共 30 分钟，完课奖励 200 分
func seedCourse(t *testing.T, db *gorm.DB) (*model.Course, []model.CourseModule) {
	t.Helper()
	course := &model.Course{Title: "网络安全导论", Level: model.Beginner, Point: 200}
	require.NoError(t, db.Create(course).Error)

	modules := []model.CourseModule{
		{CourseID: course.ID, Title: "第一课", Duration: 10, Order: 1},
		{CourseID: course.ID, Title: "第二课", Duration: 20, Order: 2},
	}
	for i := range modules {
		require.NoError(t, db.Create(&modules[i]).Error)
	}
	return course, modules
}

func TestEnrollSnapshotsDuration(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, _ := seedCourse(t, db)

	progress, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CourseEnrolled, progress.Status)
	assert.Equal(t, 30.0, progress.TotalDuration)

	_, err = svc.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	// 报名后新增模块不回填快照
	require.NoError(t, db.Create(&model.CourseModule{CourseID: course.ID, Title: "加餐", Duration: 60}).Error)
	fresh, err := svc.Enroll(seedUser(t, db, "bob", model.Noobies).ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 90.0, fresh.TotalDuration)

	var old model.CourseProgress
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&old).Error)
	assert.Equal(t, 30.0, old.TotalDuration)
}

func TestWatchTimeMonotone(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, modules := seedCourse(t, db)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	result, err := svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[0].ID, WatchedMinutes: 8})
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.WatchedTotal)
	assert.False(t, result.CourseCompleted)

	// 回退上报不生效
	result, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[0].ID, WatchedMinutes: 3})
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.WatchedTotal)
}

func TestCourseCompletionAtBufferBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, modules := seedCourse(t, db)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[0].ID, WatchedMinutes: 10})
	require.NoError(t, err)

	// 累计 26.9 < 30-3，未完成
	result, err := svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[1].ID, WatchedMinutes: 16.9})
	require.NoError(t, err)
	assert.False(t, result.CourseCompleted)

	// 累计 27 >= 30-3，首次达标完课并发奖
	result, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[1].ID, WatchedMinutes: 17})
	require.NoError(t, err)
	assert.True(t, result.CourseCompleted)
	assert.Equal(t, 200, result.PointsEarned)
	assert.Equal(t, model.CourseCompleted, result.Progress.Status)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 200, fresh.CumulativePoint)

	// 完课积分不入全局榜
	var count int64
	require.NoError(t, db.Model(&model.GlobalLeaderboardEntry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCourseRewardOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, modules := seedCourse(t, db)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[0].ID, WatchedMinutes: 10})
	require.NoError(t, err)
	result, err := svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[1].ID, WatchedMinutes: 20})
	require.NoError(t, err)
	assert.True(t, result.CourseCompleted)
	assert.Equal(t, 200, result.PointsEarned)

	// 完课后继续看不会再发奖
	result, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[1].ID, WatchedMinutes: 20, Completed: true})
	require.NoError(t, err)
	assert.False(t, result.CourseCompleted)
	assert.Equal(t, 0, result.PointsEarned)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 200, fresh.CumulativePoint)
}

func TestWatchTimeRequiresEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, modules := seedCourse(t, db)

	_, err := svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[0].ID, WatchedMinutes: 5})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestWatchTimeRejectsForeignModule(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, _ := seedCourse(t, db)
	_, otherModules := seedCourse(t, db)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: otherModules[0].ID, WatchedMinutes: 5})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestGetProgressPercentCapped(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCourseService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	course, modules := seedCourse(t, db)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	_, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[0].ID, WatchedMinutes: 10})
	require.NoError(t, err)
	_, err = svc.ReportWatchTime(user.ID, course.ID, WatchTimeInput{ModuleID: modules[1].ID, WatchedMinutes: 25})
	require.NoError(t, err)

	views, err := svc.GetProgress(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, course.Title, views[0].CourseTitle)
	assert.Equal(t, 35.0, views[0].WatchedTotal)
	assert.Equal(t, 100.0, views[0].Percent)
}
