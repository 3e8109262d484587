package dto

import "time"

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	Phone             string    `json:"phone"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Role              string    `json:"role"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	IsVerified        bool      `json:"is_verified"`
	HasPassword       bool      `json:"has_password"`
	CreatedAt         time.Time `json:"created_at"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ValidateResponse echoes the verified claims of a bearer token.
type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type VerificationStatusResponse struct {
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

type LoginLogResponse struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
}

type LoginLogListResponse struct {
	Logs  []LoginLogResponse `json:"logs"`
	Count int                `json:"count"`
}

type DetectionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Posture   string    `json:"posture"`
	Angle     float64   `json:"angle"`
	Timestamp time.Time `json:"timestamp"`
}

type DetectionListResponse struct {
	Detections []DetectionResponse `json:"detections"`
	Count      int                 `json:"count"`
}

// DeletedResponse reports how many records a purge removed.
type DeletedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
