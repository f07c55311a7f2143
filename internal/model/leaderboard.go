package model

import "time"

// CTFLeaderboardEntry 每场比赛每名选手一行，Username/Avatar 为注册时的展示快照
type CTFLeaderboardEntry struct {
	BaseModel
	CTFID         uint       `gorm:"uniqueIndex:idx_ctf_user;not null" json:"ctfId"`
	UserID        uint       `gorm:"uniqueIndex:idx_ctf_user;not null" json:"userId"`
	Username      string     `gorm:"size:100" json:"username"`
	AvatarPicture string     `gorm:"size:255" json:"avatarPicture"`
	Score         int        `gorm:"default:0" json:"score"`
	LastSolveAt   *time.Time `json:"lastSolveAt"` // 同分时先解出者排前
}

func (CTFLeaderboardEntry) TableName() string {
	return "ctf_leaderboard"
}

// GlobalLeaderboardEntry 每名用户一行；TotalPoint 应恒等于测验与CTF积分之和，
// 后台对账任务周期性校正
type GlobalLeaderboardEntry struct {
	BaseModel
	UserID         uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Username       string `gorm:"size:100" json:"username"`
	AvatarPicture  string `gorm:"size:255" json:"avatarPicture"`
	TotalQuizPoint int    `gorm:"default:0" json:"totalQuizPoint"`
	TotalCTFPoint  int    `gorm:"default:0" json:"totalCTFPoint"`
	TotalPoint     int    `gorm:"default:0" json:"totalPoint"`
}

func (GlobalLeaderboardEntry) TableName() string {
	return "global_leaderboard"
}
