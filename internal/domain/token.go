package domain

import "time"

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

func (tc TokenClaims) IsAdmin() bool {
	return tc.Role == RoleAdmin
}
