package domain

import "time"

// Login outcomes.
const (
	LoginStatusSuccess = "success"
	LoginStatusFailed  = "failed"
)

// Login methods.
const (
	LoginMethodPassword = "password"
	LoginMethodGoogle   = "google"
	LoginMethodAdmin    = "admin"
)

// LoginLog is an append-only record of one login attempt.
// UserID is nil when the attempt could not be tied to an account.
type LoginLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    *string   `json:"user_id" db:"user_id"`
	Method    string    `json:"method" db:"method"`
	Status    string    `json:"status" db:"status"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// ClientInfo describes the caller of a request.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
