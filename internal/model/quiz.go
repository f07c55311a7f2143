package model

import "time"

type QuizType string

const (
	QuizMCQ         QuizType = "mcq"
	QuizDragAndDrop QuizType = "drag-and-drop"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Type        QuizType `gorm:"size:20;default:'mcq'" json:"type"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	BaseModel
	QuizID      uint     `gorm:"index;not null" json:"quizId"`
	Question    string   `gorm:"type:text;not null" json:"question"`
	Options     []string `gorm:"serializer:json" json:"options"`
	Answer      int      `gorm:"not null" json:"-"` // 正确选项下标，提交前不下发
	Explanation string   `gorm:"type:text" json:"-"`
	Point       int      `gorm:"default:0" json:"point"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizProgress Score 为历史最高百分比成绩，只升不降
type QuizProgress struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_quiz;not null" json:"userId"`
	QuizID      uint       `gorm:"uniqueIndex:idx_user_quiz;not null" json:"quizId"`
	Score       float64    `gorm:"default:0" json:"score"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (QuizProgress) TableName() string {
	return "quiz_progress"
}

// QuizAnswer 每题一行；Correct=true 代表该题积分已发放，重复答对不再计分
type QuizAnswer struct {
	BaseModel
	UserID     uint `gorm:"uniqueIndex:idx_user_question;not null" json:"userId"`
	QuestionID uint `gorm:"uniqueIndex:idx_user_question;not null" json:"questionId"`
	QuizID     uint `gorm:"index;not null" json:"quizId"`
	Correct    bool `gorm:"default:false" json:"correct"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
