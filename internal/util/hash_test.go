package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashFlag(t *testing.T) {
	h := HashFlag("flag{header_hunter}")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashFlag("flag{header_hunter}"))
	assert.NotEqual(t, h, HashFlag("flag{Header_Hunter}"))

	// 已知摘要，防止换散列算法不被察觉
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashFlag(""))
}

func TestGenerateReferralCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := GenerateReferralCode()
		assert.Len(t, code, 10)
		assert.False(t, seen[code])
		seen[code] = true
	}
}
