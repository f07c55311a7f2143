package service

import (
	"testing"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestUserService(db *gorm.DB) *UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewCheckinRepository(db),
	)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	user := seedUser(t, db, "alice", model.Noobies)

	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{
		Username: "alice2",
		Password: "newpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword")))

	// 空字段不覆盖
	updated, err = svc.UpdateProfile(user.ID, UpdateProfileInput{AvatarPicture: "/uploads/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "/uploads/a.png", updated.AvatarPicture)

	_, err = svc.UpdateProfile(9999, UpdateProfileInput{Username: "ghost"})
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGetUsersFilter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)

	seedUser(t, db, "online", model.Noobies)
	offline := seedUser(t, db, "offline", model.Amateur)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", offline.ID).
		Update("last_seen", time.Now().Add(-time.Hour)).Error)
	banned := seedUser(t, db, "banned", model.Noobies)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", banned.ID).
		Update("disabled", true).Error)

	users, total, err := svc.GetUsers(1, 20, UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)

	users, total, err = svc.GetUsers(1, 20, UserFilter{Status: "online"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	users, total, err = svc.GetUsers(1, 20, UserFilter{Status: "disabled"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, banned.ID, users[0].ID)

	users, total, err = svc.GetUsers(1, 20, UserFilter{Role: "amateur"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, offline.ID, users[0].ID)

	_, total, err = svc.GetUsers(1, 20, UserFilter{Search: "onli"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSetDisabled(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	user := seedUser(t, db, "alice", model.Noobies)

	updated, err := svc.SetDisabled(user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Disabled)

	updated, err = svc.SetDisabled(user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Disabled)
}

func TestGetCheckinCalendar(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	user := seedUser(t, db, "alice", model.Noobies)

	// 三月两条、四月一条
	for _, day := range []time.Time{
		time.Date(2026, time.March, 3, 9, 0, 0, 0, time.Local),
		time.Date(2026, time.March, 4, 9, 0, 0, 0, time.Local),
		time.Date(2026, time.April, 1, 9, 0, 0, 0, time.Local),
	} {
		require.NoError(t, db.Create(&model.Checkin{UserID: user.ID, CheckinAt: day, StreakDays: 1}).Error)
	}

	march, err := svc.GetCheckinCalendar(user.ID, 2026, time.March)
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, 3, march[0].CheckinAt.Day())
	assert.Equal(t, 4, march[1].CheckinAt.Day())

	april, err := svc.GetCheckinCalendar(user.ID, 2026, time.April)
	require.NoError(t, err)
	assert.Len(t, april, 1)
}
