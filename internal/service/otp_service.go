package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/ergosit/posture-auth/internal/utils"
)

// OTPService manages the single outstanding reset code per account.
// Checking a code never consumes it; Clear does.
type OTPService struct {
	users    repository.UserRepository
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
	metrics  *Metrics
}

func NewOTPService(users repository.UserRepository, ttl time.Duration, metrics *Metrics) *OTPService {
	return &OTPService{
		users:    users,
		ttl:      ttl,
		now:      time.Now,
		generate: utils.GenerateOTP,
		metrics:  metrics,
	}
}

// WithClock replaces the time source used for expiry.
func (s *OTPService) WithClock(now func() time.Time) *OTPService {
	s.now = now
	return s
}

// Issue stores a fresh code for email, replacing any earlier one.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", err
	}

	if err := s.users.SetOTP(ctx, email, code, s.now().Add(s.ttl)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("no account for %s: %w", email, ErrNotFound)
		}
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	s.metrics.OTPIssued(ctx)
	return code, nil
}

// Check reports whether code is the current, unexpired code for email.
func (s *OTPService) Check(ctx context.Context, email, code string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load user: %w", err)
	}

	if user.OTPCode == nil || user.OTPExpiry == nil || code == "" {
		return false, nil
	}

	if !s.now().Before(*user.OTPExpiry) {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(*user.OTPCode), []byte(code)) == 1, nil
}

// Clear removes the outstanding code.
func (s *OTPService) Clear(ctx context.Context, email string) error {
	if err := s.users.ClearOTP(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no account for %s: %w", email, ErrNotFound)
		}
		return fmt.Errorf("failed to clear otp: %w", err)
	}
	return nil
}
