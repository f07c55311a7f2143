package model

// Referral 邀请关系，一名新用户只能被归因一次
type Referral struct {
	BaseModel
	ReferrerID     uint `gorm:"index;not null" json:"referrerId"`
	ReferredUserID uint `gorm:"uniqueIndex;not null" json:"referredUserId"`
}

func (Referral) TableName() string {
	return "referrals"
}

// ReferralTierReward 阶梯奖励领取记录，(user, tier) 唯一保证只领一次
type ReferralTierReward struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex:idx_user_tier;not null" json:"userId"`
	Tier   int  `gorm:"uniqueIndex:idx_user_tier;not null" json:"tier"` // 1 / 5 / 10
	Points int  `gorm:"default:0" json:"points"`
}

func (ReferralTierReward) TableName() string {
	return "referral_tier_rewards"
}
