package model

import "time"

type CTFFormat string

const (
	Jeopardy      CTFFormat = "jeopardy"
	AttackDefense CTFFormat = "attack-defense"
)

type CTFStatus string

const (
	CTFUpcoming  CTFStatus = "upcoming"
	CTFActive    CTFStatus = "active"
	CTFCompleted CTFStatus = "completed"
)

// swagger:model CTFEvent
type CTFEvent struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:255" json:"image"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Type        string    `gorm:"size:20;default:'public'" json:"type"`
	Format      CTFFormat `gorm:"size:20;default:'jeopardy'" json:"format"`
	Status      CTFStatus `gorm:"size:20;default:'upcoming'" json:"status"`
	Categories  []string  `gorm:"serializer:json" json:"categories"`

	Questions []CTFQuestion `gorm:"foreignKey:CTFID" json:"questions,omitempty"`
}

func (CTFEvent) TableName() string {
	return "ctf_events"
}

type CTFDifficulty string

const (
	Easy   CTFDifficulty = "easy"
	Medium CTFDifficulty = "medium"
	Hard   CTFDifficulty = "hard"
)

// CTFQuestion FlagHash 存 flag 的 SHA-256 十六进制摘要，明文不落库
type CTFQuestion struct {
	BaseModel
	CTFID         uint          `gorm:"index;not null" json:"ctfId"`
	Title         string        `gorm:"size:255;not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description"`
	Category      string        `gorm:"size:50;not null" json:"category"`
	Difficulty    CTFDifficulty `gorm:"size:10;default:'easy'" json:"difficulty"`
	Points        int           `gorm:"default:0" json:"points"`
	FlagHash      string        `gorm:"size:64;not null" json:"-"`
	Hints         string        `gorm:"type:text" json:"hints,omitempty"`
	SecretMessage string        `gorm:"size:255" json:"-"` // 解题后展示
	FileURL       string        `gorm:"size:255" json:"fileUrl,omitempty"`
}

func (CTFQuestion) TableName() string {
	return "ctf_questions"
}

type CTFPlayerStatus string

const (
	CTFRegistered CTFPlayerStatus = "registered"
	CTFInProgress CTFPlayerStatus = "in-progress"
	CTFSubmitted  CTFPlayerStatus = "completed"
)

// CTFRegistration 每个用户每场比赛一行，即选手名单+赛内进度
type CTFRegistration struct {
	BaseModel
	UserID        uint            `gorm:"uniqueIndex:idx_user_ctf;not null" json:"userId"`
	CTFID         uint            `gorm:"uniqueIndex:idx_user_ctf;not null" json:"ctfId"`
	Score         int             `gorm:"default:0" json:"score"`
	Status        CTFPlayerStatus `gorm:"size:20;default:'registered'" json:"status"`
	RewardClaimed bool            `gorm:"default:false" json:"rewardClaimed"`
	JoinedAt      time.Time       `json:"joinedAt"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
}

func (CTFRegistration) TableName() string {
	return "ctf_registrations"
}

// CTFSolve 夺旗记录；(user, question) 唯一索引即防重放保证
type CTFSolve struct {
	BaseModel
	UserID     uint      `gorm:"uniqueIndex:idx_user_ctf_question;not null" json:"userId"`
	QuestionID uint      `gorm:"uniqueIndex:idx_user_ctf_question;not null" json:"questionId"`
	CTFID      uint      `gorm:"index;not null" json:"ctfId"`
	Points     int       `gorm:"default:0" json:"points"`
	SolvedAt   time.Time `gorm:"not null" json:"solvedAt"`
}

func (CTFSolve) TableName() string {
	return "ctf_solves"
}
