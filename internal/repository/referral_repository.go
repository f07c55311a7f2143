package repository

import (
	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	DB *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{DB: db}
}

func (r *ReferralRepository) Create(tx *gorm.DB, referral *model.Referral) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(referral).Error
}

func (r *ReferralRepository) CountByReferrer(referrerID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Referral{}).Where("referrer_id = ?", referrerID).Count(&count).Error
	return count, err
}

func (r *ReferralRepository) FindByReferrer(referrerID uint) ([]model.Referral, error) {
	var referrals []model.Referral
	err := r.DB.Where("referrer_id = ?", referrerID).Order("created_at DESC").Find(&referrals).Error
	return referrals, err
}

func (r *ReferralRepository) FindTierRewards(userID uint) ([]model.ReferralTierReward, error) {
	var rewards []model.ReferralTierReward
	err := r.DB.Where("user_id = ?", userID).Order("tier ASC").Find(&rewards).Error
	return rewards, err
}

func (r *ReferralRepository) FindTierReward(userID uint, tier int) (*model.ReferralTierReward, error) {
	var reward model.ReferralTierReward
	err := r.DB.Where("user_id = ? AND tier = ?", userID, tier).First(&reward).Error
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *ReferralRepository) CreateTierReward(tx *gorm.DB, reward *model.ReferralTierReward) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(reward).Error
}
