package repository

import (
	"time"

	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type CheckinRepository struct {
	DB *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{DB: db}
}

func (r *CheckinRepository) Create(checkin *model.Checkin) error {
	return r.DB.Create(checkin).Error
}

func (r *CheckinRepository) FindLatest(userID uint) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.DB.Where("user_id = ?", userID).Order("checkin_at DESC").First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

// FindRange 查询区间内的签到记录，打卡日历用
func (r *CheckinRepository) FindRange(userID uint, from, to time.Time) ([]model.Checkin, error) {
	var checkins []model.Checkin
	err := r.DB.Where("user_id = ? AND checkin_at >= ? AND checkin_at < ?", userID, from, to).
		Order("checkin_at ASC").Find(&checkins).Error
	return checkins, err
}
