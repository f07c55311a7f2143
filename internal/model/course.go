package model

type CourseLevel string

const (
	Beginner     CourseLevel = "Beginner"
	Intermediate CourseLevel = "Intermediate"
	Advanced     CourseLevel = "Advanced"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title            string      `gorm:"size:255;not null" json:"title"`
	Description      string      `gorm:"type:text" json:"description"`
	Level            CourseLevel `gorm:"size:20;default:'Beginner'" json:"level"`
	Category         string      `gorm:"size:50" json:"category"`
	Type             string      `gorm:"size:50" json:"type"`
	CourseImage      string      `gorm:"size:255" json:"courseImage"`
	InstructorName   string      `gorm:"size:100" json:"instructorName"`
	InstructorAvatar string      `gorm:"size:255" json:"instructorAvatar"`
	Point            int         `gorm:"default:0" json:"point"` // 完课一次性奖励积分

	Modules []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseModule 课程视频模块，按 Order 排序
type CourseModule struct {
	BaseModel
	CourseID uint    `gorm:"index;not null" json:"courseId"`
	Title    string  `gorm:"size:255;not null" json:"title"`
	VideoURL string  `gorm:"size:255" json:"videoUrl"`
	Duration float64 `gorm:"default:0" json:"duration"` // 视频时长（分钟）
	Order    int     `gorm:"default:0" json:"order"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
