package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(clock *fakeClock) *JWTManager {
	return NewJWTManager(testSecret, 7*24*time.Hour).WithClock(clock.Now)
}

func testUser() *domain.User {
	return &domain.User{ID: "6f1c2a9e-1111-4222-8333-444455556666", Email: "rina@example.com", Role: domain.RoleAdmin}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	manager := newTestManager(clock)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "6f1c2a9e-1111-4222-8333-444455556666", claims.UserID)
	assert.Equal(t, "rina@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, clock.t.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, 7*24*3600, manager.ExpirySeconds())
}

func TestJWTManager_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	manager := newTestManager(clock)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour - time.Second)
	_, err = manager.ValidateToken(token)
	require.NoError(t, err, "token must still be valid one second before expiry")

	clock.Advance(2 * time.Second)
	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_TamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	manager := newTestManager(clock)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = manager.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_TamperedSignatureOnExpiredTokenIsInvalid(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	manager := newTestManager(clock)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)
	clock.Advance(8 * 24 * time.Hour)

	_, err = manager.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	manager := newTestManager(clock)

	other := NewJWTManager("another-secret-key-that-is-at-least-32-chars", time.Hour).WithClock(clock.Now)
	foreign, err := other.GenerateToken(testUser())
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "other secret", token: foreign},
		{name: "alg none", token: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestJWTManager_RoleIsFixedAtIssuance(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	manager := newTestManager(clock)

	user := testUser()
	token, err := manager.GenerateToken(user)
	require.NoError(t, err)

	user.Role = domain.RoleUser

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}
