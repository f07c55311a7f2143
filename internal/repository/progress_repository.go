package repository

import (
	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndCourse(userID, courseID uint) (*model.CourseProgress, error) {
	var progress model.CourseProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByUser(userID uint) ([]model.CourseProgress, error) {
	var progress []model.CourseProgress
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) Create(progress *model.CourseProgress) error {
	return r.DB.Create(progress).Error
}

func (r *ProgressRepository) FindVideoProgress(userID, moduleID uint) (*model.VideoProgress, error) {
	var vp model.VideoProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&vp).Error
	if err != nil {
		return nil, err
	}
	return &vp, nil
}

func (r *ProgressRepository) ListVideoProgress(userID, courseID uint) ([]model.VideoProgress, error) {
	var vps []model.VideoProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&vps).Error
	return vps, err
}

// SumWatched 用户在某课程下的累计观看分钟数
func (r *ProgressRepository) SumWatched(tx *gorm.DB, userID, courseID uint) (float64, error) {
	var total float64
	err := tx.Model(&model.VideoProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Select("COALESCE(SUM(watched_minutes), 0)").
		Scan(&total).Error
	return total, err
}
