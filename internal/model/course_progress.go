package model

import "time"

type CourseStatus string

const (
	CourseEnrolled  CourseStatus = "enrolled"
	CourseCompleted CourseStatus = "completed"
)

// CourseProgress 每个用户每门课一行；TotalDuration 为报名时的课程总时长快照，
// 之后课程模块变更不回填（刻意保持陈旧，避免已报名用户的完成判定漂移）
type CourseProgress struct {
	BaseModel
	UserID          uint         `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID        uint         `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	Status          CourseStatus `gorm:"size:20;default:'enrolled'" json:"status"`
	TotalDuration   float64      `gorm:"default:0" json:"totalDuration"` // 分钟
	RewardClaimed   bool         `gorm:"default:false" json:"rewardClaimed"`
	CurrentModuleID uint         `json:"currentModuleId"`
	LastWatched     *time.Time   `json:"lastWatched,omitempty"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}

// VideoProgress 单模块观看进度，WatchedMinutes 只增不减
type VideoProgress struct {
	BaseModel
	UserID          uint    `gorm:"uniqueIndex:idx_user_module;not null" json:"userId"`
	ModuleID        uint    `gorm:"uniqueIndex:idx_user_module;not null" json:"moduleId"`
	CourseID        uint    `gorm:"index;not null" json:"courseId"`
	WatchedMinutes  float64 `gorm:"default:0" json:"watchedMinutes"`
	DurationMinutes float64 `gorm:"default:0" json:"durationMinutes"`
	Completed       bool    `gorm:"default:false" json:"completed"` // 播放器上报播完事件
}

func (VideoProgress) TableName() string {
	return "video_progress"
}
