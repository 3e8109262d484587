package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/ergosit/posture-auth/internal/utils"
	"go.uber.org/zap"
)

type accountService struct {
	users      repository.UserRepository
	detections repository.DetectionRepository
	hasher     PasswordHasher
	logger     *zap.Logger
}

func NewAccountService(users repository.UserRepository, detections repository.DetectionRepository, hasher PasswordHasher, logger *zap.Logger) AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &accountService{users: users, detections: detections, hasher: hasher, logger: logger}
}

func (s *accountService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the supplied fields and returns the stored result.
func (s *accountService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	fields := fieldErrors{}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			fields.add("full_name", "must not be empty")
		}
		update.FullName = &name
	}
	if update.Phone != nil {
		phone := utils.NormalizePhone(*update.Phone)
		if !utils.ValidatePhone(phone) {
			fields.add("phone", "must be a valid phone number")
		}
		update.Phone = &phone
	}
	if update.Age != nil && (*update.Age < minAge || *update.Age > maxAge) {
		fields.add("age", fmt.Sprintf("must be between %d and %d", minAge, maxAge))
	}
	if update.Gender != nil {
		gender := strings.TrimSpace(*update.Gender)
		if gender == "" {
			fields.add("gender", "must not be empty")
		}
		update.Gender = &gender
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	if !update.IsEmpty() {
		if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
			}
			return nil, mapDuplicate(err, "failed to update profile")
		}
	}

	return s.GetUser(ctx, userID)
}

// ChangePassword requires the current password. Federated accounts without a
// password must use the reset flow instead.
func (s *accountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if !utils.ValidatePassword(newPassword) {
		return &ValidationError{Fields: map[string]string{
			"new_password": fmt.Sprintf("must be between %d and %d characters", utils.MinPasswordLength, utils.MaxPasswordLength),
		}}
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !user.HasPassword() {
		return ErrFederatedAccount
	}
	if !s.hasher.Verify(oldPassword, *user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, user.Email, hash); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

// DeleteAccount removes the user and their detection history. Login logs are
// kept for auditing.
func (s *accountService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	deleted, err := s.detections.DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete detections: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("account deleted", zap.String("user_id", userID), zap.Int64("detections_removed", deleted))
	return nil
}
