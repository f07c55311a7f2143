package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
)

// 段位阶梯积分门槛
const (
	AmateurThreshold = 500
	HackerThreshold  = 2000
)

// 邀请阶梯奖励：达到 N 人可领取对应积分，每档只能领一次
var ReferralTierPoints = map[int]int{
	1:  50,
	5:  150,
	10: 300,
}
