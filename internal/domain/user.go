package domain

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultProfilePictureURL is assigned to accounts that register without an avatar.
const DefaultProfilePictureURL = "https://ui-avatars.com/api/?name=User&background=007BFF&color=ffffff"

// User represents an account in the system.
// PasswordHash is nil for federated-only accounts; Phone is nil when the
// identity provider did not supply one.
type User struct {
	ID                string     `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	Phone             *string    `json:"phone" db:"phone"`
	FullName          string     `json:"full_name" db:"full_name"`
	Age               int        `json:"age" db:"age"`
	Gender            string     `json:"gender" db:"gender"`
	Role              string     `json:"role" db:"role"`
	ProfilePictureURL string     `json:"profile_picture_url" db:"profile_picture_url"`
	PasswordHash      *string    `json:"-" db:"password_hash"`
	IsVerified        bool       `json:"is_verified" db:"is_verified"`
	VerificationToken *string    `json:"-" db:"verification_token"`
	OTPCode           *string    `json:"-" db:"otp_code"`
	OTPExpiry         *time.Time `json:"-" db:"otp_expiry"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PhoneNumber returns the phone or an empty string.
func (u *User) PhoneNumber() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName          *string
	Phone             *string
	Age               *int
	Gender            *string
	ProfilePictureURL *string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil && p.Age == nil && p.Gender == nil && p.ProfilePictureURL == nil
}
