package service

import (
	"errors"
	"time"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseService 课程管理、报名与观看进度
type CourseService struct {
	CourseRepo   *repository.CourseRepository
	ModuleRepo   *repository.ModuleRepository
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
	Leaderboard  *LeaderboardService
	Config       *config.Config
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	leaderboard *LeaderboardService,
	cfg *config.Config,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		ModuleRepo:   moduleRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
		Leaderboard:  leaderboard,
		Config:       cfg,
	}
}

type CourseInput struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description"`
	Level            string `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Category         string `json:"category"`
	Type             string `json:"type"`
	CourseImage      string `json:"courseImage"`
	InstructorName   string `json:"instructorName"`
	InstructorAvatar string `json:"instructorAvatar"`
	Point            int    `json:"point" binding:"min=0"`
}

func (s *CourseService) CreateCourse(input CourseInput) (*model.Course, error) {
	course := &model.Course{
		Title:            input.Title,
		Description:      input.Description,
		Level:            model.CourseLevel(input.Level),
		Category:         input.Category,
		Type:             input.Type,
		CourseImage:      input.CourseImage,
		InstructorName:   input.InstructorName,
		InstructorAvatar: input.InstructorAvatar,
		Point:            input.Point,
	}
	if course.Level == "" {
		course.Level = model.Beginner
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(id uint, input CourseInput) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	course.Title = input.Title
	course.Description = input.Description
	if input.Level != "" {
		course.Level = model.CourseLevel(input.Level)
	}
	course.Category = input.Category
	course.Type = input.Type
	course.CourseImage = input.CourseImage
	course.InstructorName = input.InstructorName
	course.InstructorAvatar = input.InstructorAvatar
	course.Point = input.Point
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(id uint) error {
	return s.CourseRepo.Delete(id)
}

type ModuleInput struct {
	Title    string  `json:"title" binding:"required"`
	VideoURL string  `json:"videoUrl"`
	Duration float64 `json:"duration" binding:"min=0"`
	Order    int     `json:"order" binding:"min=0"`
	// LocalPath 本地存储时的文件路径，提供则用 ffprobe 回填时长
	LocalPath string `json:"localPath"`
}

// CreateModule 新建课程模块；传了本地文件路径且未显式给时长时探测视频时长
func (s *CourseService) CreateModule(courseID uint, input ModuleInput) (*model.CourseModule, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	duration := input.Duration
	if duration == 0 && input.LocalPath != "" {
		if info, err := util.GetVideoInfo(input.LocalPath); err == nil {
			duration = info.Duration / 60
		} else {
			logger.Log.Warn("视频时长探测失败", zap.String("path", input.LocalPath), zap.Error(err))
		}
	}

	m := &model.CourseModule{
		CourseID: courseID,
		Title:    input.Title,
		VideoURL: input.VideoURL,
		Duration: duration,
		Order:    input.Order,
	}
	if err := s.ModuleRepo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) UpdateModule(id uint, input ModuleInput) (*model.CourseModule, error) {
	m, err := s.ModuleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	m.Title = input.Title
	m.VideoURL = input.VideoURL
	if input.Duration > 0 {
		m.Duration = input.Duration
	}
	m.Order = input.Order
	if err := s.ModuleRepo.Update(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) DeleteModule(id uint) error {
	return s.ModuleRepo.Delete(id)
}

func (s *CourseService) ListCourses() ([]model.Course, error) {
	return s.CourseRepo.FindAll()
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// Enroll 报名课程：落进度行并快照当前课程总时长，后续模块增删不回填
func (s *CourseService) Enroll(userID, courseID uint) (*model.CourseProgress, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if _, err := s.ProgressRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	total, err := s.ModuleRepo.TotalDuration(courseID)
	if err != nil {
		return nil, err
	}

	progress := &model.CourseProgress{
		UserID:        userID,
		CourseID:      courseID,
		Status:        model.CourseEnrolled,
		TotalDuration: total,
	}
	if err := s.ProgressRepo.Create(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

type WatchTimeInput struct {
	ModuleID       uint    `json:"moduleId" binding:"required"`
	WatchedMinutes float64 `json:"watchedMinutes" binding:"min=0"`
	Completed      bool    `json:"completed"`
}

// WatchTimeResult 上报观看进度的结果
type WatchTimeResult struct {
	Progress        *model.CourseProgress `json:"progress"`
	WatchedTotal    float64               `json:"watchedTotal"`
	CourseCompleted bool                  `json:"courseCompleted"`
	PointsEarned    int                   `json:"pointsEarned"`
}

// ReportWatchTime 上报单模块观看分钟数（只进不退），随后在同一事务内跑
// 完成判定：累计观看 >= 快照总时长 - 缓冲，首次达标翻转状态并一次性发放课程积分
func (s *CourseService) ReportWatchTime(userID, courseID uint, input WatchTimeInput) (*WatchTimeResult, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	progress, err := s.ProgressRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	module, err := s.ModuleRepo.FindByID(input.ModuleID)
	if err != nil || module.CourseID != courseID {
		return nil, util.ErrModuleNotFound
	}

	result := &WatchTimeResult{}
	now := time.Now()
	buffer := s.Config.Course.CompletionBufferMinutes

	err = s.ProgressRepo.DB.Transaction(func(tx *gorm.DB) error {
		var vp model.VideoProgress
		err := tx.Where("user_id = ? AND module_id = ?", userID, input.ModuleID).First(&vp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			vp = model.VideoProgress{
				UserID:          userID,
				ModuleID:        input.ModuleID,
				CourseID:        courseID,
				DurationMinutes: module.Duration,
			}
		} else if err != nil {
			return err
		}
		// 观看时长只进不退
		if input.WatchedMinutes > vp.WatchedMinutes {
			vp.WatchedMinutes = input.WatchedMinutes
		}
		if input.Completed {
			vp.Completed = true
		}
		if err := tx.Save(&vp).Error; err != nil {
			return err
		}

		watched, err := s.ProgressRepo.SumWatched(tx, userID, courseID)
		if err != nil {
			return err
		}
		result.WatchedTotal = watched

		progress.CurrentModuleID = input.ModuleID
		progress.LastWatched = &now

		completedNow := progress.Status != model.CourseCompleted &&
			progress.TotalDuration > 0 &&
			watched >= progress.TotalDuration-buffer
		if completedNow {
			progress.Status = model.CourseCompleted
			result.CourseCompleted = true
			if !progress.RewardClaimed && course.Point > 0 {
				progress.RewardClaimed = true
				result.PointsEarned = course.Point
				if _, err := s.Leaderboard.AwardOffBoardPoints(tx, userID, course.Point); err != nil {
					return err
				}
			}
		}
		return tx.Save(progress).Error
	})
	if err != nil {
		return nil, err
	}

	if result.CourseCompleted {
		logger.Log.Info("课程完成",
			zap.Uint("user_id", userID),
			zap.Uint("course_id", courseID),
			zap.Int("points", result.PointsEarned))
	}

	result.Progress = progress
	return result, nil
}

// CourseProgressView 仪表盘课程进度
type CourseProgressView struct {
	model.CourseProgress
	CourseTitle  string  `json:"courseTitle"`
	CourseImage  string  `json:"courseImage"`
	WatchedTotal float64 `json:"watchedTotal"`
	Percent      float64 `json:"percent"`
}

func (s *CourseService) GetProgress(userID uint) ([]CourseProgressView, error) {
	progress, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]CourseProgressView, 0, len(progress))
	for _, p := range progress {
		view := CourseProgressView{CourseProgress: p}
		if course, err := s.CourseRepo.FindByID(p.CourseID); err == nil {
			view.CourseTitle = course.Title
			view.CourseImage = course.CourseImage
		}
		watched, err := s.ProgressRepo.SumWatched(s.ProgressRepo.DB, userID, p.CourseID)
		if err == nil && p.TotalDuration > 0 {
			view.WatchedTotal = watched
			view.Percent = watched / p.TotalDuration * 100
			if view.Percent > 100 {
				view.Percent = 100
			}
		}
		views = append(views, view)
	}
	return views, nil
}
