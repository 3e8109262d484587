package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ergosit/posture-auth/internal/utils"
)

// Errors returned by services. Handlers map them onto HTTP statuses.
var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateIdentity    = errors.New("identity already registered")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrUnverified           = errors.New("email address has not been verified")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("insufficient permissions")
	ErrInvalidAPIKey        = errors.New("invalid api key")
	ErrNotFound             = errors.New("not found")
	ErrInvalidOTP           = errors.New("invalid or expired code")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrFederatedAccount     = errors.New("account signs in through an identity provider and has no password")

	ErrTokenExpired = utils.ErrTokenExpired
	ErrTokenInvalid = utils.ErrTokenInvalid
)

var (
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrDuplicateIdentity)
	ErrPhoneTaken = fmt.Errorf("%w: phone already registered", ErrDuplicateIdentity)
)

// ValidationError lists the offending fields of a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// fieldErrors accumulates validation problems.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
