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

func newTestReferralService(db *gorm.DB) *ReferralService {
	return NewReferralService(
		repository.NewReferralRepository(db),
		repository.NewUserRepository(db),
		newTestLeaderboard(db),
		newTestConfig(),
	)
}

func seedReferrals(t *testing.T, db *gorm.DB, referrerID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		invitee := seedUser(t, db, "invitee"+string(rune('a'+i)), model.Noobies)
		require.NoError(t, db.Create(&model.Referral{
			ReferrerID:     referrerID,
			ReferredUserID: invitee.ID,
		}).Error)
	}
}

func TestReferralInfo(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReferralService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	seedReferrals(t, db, user.ID, 5)

	info, err := svc.GetInfo(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ReferralCode, info.Code)
	assert.Equal(t, "http://localhost:3000/register?ref="+user.ReferralCode, info.Link)
	assert.Equal(t, int64(5), info.JoinedCount)

	// 阶梯按门槛升序
	require.Len(t, info.Tiers, 3)
	assert.Equal(t, []int{1, 5, 10}, []int{info.Tiers[0].Tier, info.Tiers[1].Tier, info.Tiers[2].Tier})
	assert.True(t, info.Tiers[0].Reached)
	assert.True(t, info.Tiers[1].Reached)
	assert.False(t, info.Tiers[2].Reached)
	assert.False(t, info.Tiers[0].Claimed)
}

func TestRecordClick(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReferralService(db)
	user := seedUser(t, db, "alice", model.Noobies)

	require.NoError(t, svc.RecordClick(user.ReferralCode))
	require.NoError(t, svc.RecordClick(user.ReferralCode))

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2, fresh.ReferralClicks)

	assert.ErrorIs(t, svc.RecordClick("nosuchcode"), util.ErrReferralCodeInvalid)
}

func TestClaimTier(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReferralService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	seedReferrals(t, db, user.ID, 5)

	state, err := svc.ClaimTier(user.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 150, state.Points)
	assert.True(t, state.Claimed)

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 150, fresh.CumulativePoint)

	// 邀请积分不入全局榜
	var count int64
	require.NoError(t, db.Model(&model.GlobalLeaderboardEntry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.ClaimTier(user.ID, 5)
	assert.ErrorIs(t, err, util.ErrTierAlreadyClaimed)
}

func TestClaimTierNotReached(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReferralService(db)
	user := seedUser(t, db, "alice", model.Noobies)
	seedReferrals(t, db, user.ID, 4)

	_, err := svc.ClaimTier(user.ID, 5)
	assert.ErrorIs(t, err, util.ErrTierNotReached)

	// 不存在的档位同样拒绝
	_, err = svc.ClaimTier(user.ID, 7)
	assert.ErrorIs(t, err, util.ErrTierNotReached)
}
