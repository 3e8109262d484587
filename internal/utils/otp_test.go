package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, OTPLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, code)
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}
