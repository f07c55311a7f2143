package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// HashFlag 对 flag 做 SHA-256，出题与判题两侧统一经过这里，明文不落库
func HashFlag(flag string) string {
	sum := sha256.Sum256([]byte(flag))
	return hex.EncodeToString(sum[:])
}

// GenerateReferralCode 生成 10 位邀请码
func GenerateReferralCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return raw[:10]
}
