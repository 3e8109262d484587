package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/repository"
)

const (
	DefaultLogLimit = 100
	MaxLogLimit     = 1000
)

type loginLogService struct {
	repo    repository.LoginLogRepository
	now     func() time.Time
	metrics *Metrics
}

func NewLoginLogService(repo repository.LoginLogRepository, metrics *Metrics) LoginLogService {
	return &loginLogService{repo: repo, now: time.Now, metrics: metrics}
}

// Record appends one attempt. A nil userID marks an attempt that could not be
// attributed to an account.
func (s *loginLogService) Record(ctx context.Context, userID *string, method, status string, client domain.ClientInfo) error {
	entry := &domain.LoginLog{
		UserID:    userID,
		Method:    method,
		Status:    status,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		Timestamp: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	s.metrics.LoginAttempt(ctx, method, status)
	return nil
}

func (s *loginLogService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.LoginLog, error) {
	logs, err := s.repo.ListByUserID(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	return logs, nil
}

func (s *loginLogService) ListAll(ctx context.Context, limit int) ([]*domain.LoginLog, error) {
	logs, err := s.repo.ListAll(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	return logs, nil
}

// Purge deletes every entry for userID. It is the only way entries leave the log.
func (s *loginLogService) Purge(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge login logs: %w", err)
	}
	return deleted, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLogLimit
	}
	if limit > MaxLogLimit {
		return MaxLogLimit
	}
	return limit
}
