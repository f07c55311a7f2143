package repository

import (
	"cryptoseven_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByReferralCode(code string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("referral_code = ?", code).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).
		Error
}

// AddPoints 累计积分自增；段位晋升由 service 层在同一事务内处理
func (r *UserRepository) AddPoints(tx *gorm.DB, userID uint, points int) error {
	return tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("cumulative_point", gorm.Expr("cumulative_point + ?", points)).
		Error
}

func (r *UserRepository) IncrementReferralClicks(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("referral_clicks", gorm.Expr("referral_clicks + 1")).
		Error
}
