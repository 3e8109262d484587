package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/repository"
)

type detectionService struct {
	users      repository.UserRepository
	detections repository.DetectionRepository
	now        func() time.Time
}

func NewDetectionService(users repository.UserRepository, detections repository.DetectionRepository) DetectionService {
	return &detectionService{users: users, detections: detections, now: time.Now}
}

func (s *detectionService) Record(ctx context.Context, userID, posture string, angle float64) (*domain.Detection, error) {
	posture = strings.TrimSpace(posture)
	if posture == "" {
		return nil, &ValidationError{Fields: map[string]string{"posture": "is required"}}
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	detection := &domain.Detection{
		UserID:    userID,
		Posture:   posture,
		Angle:     angle,
		Timestamp: s.now().UTC(),
	}
	if err := s.detections.Create(ctx, detection); err != nil {
		return nil, fmt.Errorf("failed to record detection: %w", err)
	}

	return detection, nil
}

func (s *detectionService) History(ctx context.Context, userID string, limit int) ([]*domain.Detection, error) {
	detections, err := s.detections.ListByUserID(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	return detections, nil
}

func (s *detectionService) Clear(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.detections.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear detections: %w", err)
	}
	return deleted, nil
}
