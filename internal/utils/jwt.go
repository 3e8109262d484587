package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned for any token that is malformed, tampered with
	// or signed with another key.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims is the JWT payload. Role and email are captured at issuance and are
// not re-read from storage while the token lives.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager manages JWT token operations
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (j *JWTManager) WithClock(now func() time.Time) *JWTManager {
	j.now = now
	return j
}

// GenerateToken signs a token for the user's current id, email and role.
func (j *JWTManager) GenerateToken(user *domain.User) (string, error) {
	issuedAt := j.now()

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies signature and expiry and returns the embedded claims.
// The error is always ErrTokenExpired or ErrTokenInvalid.
func (j *JWTManager) ValidateToken(tokenString string) (*domain.TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	tokenClaims := &domain.TokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		tokenClaims.IssuedAt = claims.IssuedAt.Time
	}

	return tokenClaims, nil
}

// ExpirySeconds returns the token lifetime in seconds
func (j *JWTManager) ExpirySeconds() int {
	return int(j.expiry.Seconds())
}
