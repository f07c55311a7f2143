package model

import (
	"time"
)

// Checkin 记录用户的每日活跃签到，用于月度打卡视图
// swagger:model Checkin
type Checkin struct {
	BaseModel
	UserID     uint      `gorm:"index;not null" json:"userId"`
	CheckinAt  time.Time `gorm:"not null;index" json:"checkinAt"`
	StreakDays int       `gorm:"default:1" json:"streakDays"` // 签到当日的连续天数
}

func (Checkin) TableName() string {
	return "checkins"
}
