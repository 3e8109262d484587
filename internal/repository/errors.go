package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicatePhone is returned when trying to store a phone number already in use
	ErrDuplicatePhone = errors.New("user with this phone already exists")
)

const (
	pgUniqueViolation    = "23505"
	pgInvalidTextFormat  = "22P02"
	usersPhoneConstraint = "users_phone_key"
)

// uniqueViolation maps a unique constraint failure on users to the matching sentinel.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return nil
	}
	if pqErr.Constraint == usersPhoneConstraint {
		return ErrDuplicatePhone
	}
	return ErrDuplicateEmail
}

// malformedID reports whether postgres rejected an identifier that is not a UUID.
func malformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgInvalidTextFormat
}
