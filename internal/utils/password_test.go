package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes must be salted")
	assert.NotContains(t, first, "secret1")

	assert.True(t, hasher.Verify("secret1", first))
	assert.True(t, hasher.Verify("secret1", second))
	assert.False(t, hasher.Verify("secret2", first))
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("secret1", ""))
	assert.False(t, CheckPasswordHash("secret1", "not-a-bcrypt-hash"))
}

func TestNewPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	hasher := NewPasswordHasher(99)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
