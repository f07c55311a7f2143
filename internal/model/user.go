package model

import (
	"time"
)

type UserRole string

// 段位阶梯：积分达到阈值后自动晋升，admin 不参与阶梯
const (
	Noobies UserRole = "noobies"
	Amateur UserRole = "amateur"
	Hacker  UserRole = "hacker"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username        string   `gorm:"size:100;not null" json:"username"`
	Email           string   `gorm:"size:100;unique;not null" json:"email"`
	Password        string   `gorm:"size:100" json:"-"`
	Role            UserRole `gorm:"size:20;default:'noobies'" json:"role"`
	AvatarPicture   string   `gorm:"size:255" json:"avatarPicture"`
	AuthProvider    string   `gorm:"size:20;default:'email'" json:"authProvider"`
	CumulativePoint int      `gorm:"default:0" json:"cumulativePoint"` // 测验+CTF累计积分
	DayStreak       int      `gorm:"default:1" json:"dayStreak"`
	ReferralCode    string   `gorm:"size:20;uniqueIndex" json:"referralCode"`
	ReferredBy      *uint    `gorm:"index" json:"referredBy,omitempty"`
	ReferralClicks  int      `gorm:"default:0" json:"referralClicks"`
	Disabled        bool     `gorm:"default:false" json:"disabled"`

	// 建号路径总是显式写入，不依赖数据库默认值
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
