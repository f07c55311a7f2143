package service

import (
	"errors"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFilter 用户列表筛选条件
type UserFilter struct {
	Role   string
	Status string
	Search string
}

// UserService 处理用户资料与后台用户管理
type UserService struct {
	UserRepo    *repository.UserRepository
	CheckinRepo *repository.CheckinRepository
}

func NewUserService(userRepo *repository.UserRepository, checkinRepo *repository.CheckinRepository) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		CheckinRepo: checkinRepo,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	Username      string `json:"username"`
	AvatarPicture string `json:"avatarPicture"`
	Password      string `json:"password" binding:"omitempty,min=8"`
}

func (s *UserService) UpdateProfile(id uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if input.Username != "" {
		user.Username = input.Username
	}
	if input.AvatarPicture != "" {
		user.AvatarPicture = input.AvatarPicture
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUsers 后台用户列表，支持分页和筛选
func (s *UserService) GetUsers(page, pageSize int, filter UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := s.UserRepo.DB.Model(&model.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status == "online" {
		query = query.Where("last_seen > ?", time.Now().Add(-15*time.Minute))
	} else if filter.Status == "disabled" {
		query = query.Where("disabled = ?", true)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

// SetDisabled 封禁/解封账号
func (s *UserService) SetDisabled(id uint, disabled bool) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	user.Disabled = disabled
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(id uint) error {
	return s.UserRepo.DB.Delete(&model.User{}, id).Error
}

// GetCheckinCalendar 某月的签到记录，打卡日历视图用
func (s *UserService) GetCheckinCalendar(userID uint, year int, month time.Month) ([]model.Checkin, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)
	return s.CheckinRepo.FindRange(userID, from, to)
}
