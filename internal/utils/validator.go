package utils

import (
	"regexp"
	"strings"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword checks the password length bounds
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}

// ValidatePhone accepts an optional leading plus followed by 8 to 15 digits,
// after separators have been stripped.
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone drops spaces, dashes and parentheses.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
