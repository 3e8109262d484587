package repository

import (
	"context"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
)

// UserRepository stores accounts. Email and phone are unique across all users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, email, hash string) error
	SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error
	Delete(ctx context.Context, id string) error
}

// LoginLogRepository stores login attempts. Entries are never modified.
type LoginLogRepository interface {
	Create(ctx context.Context, entry *domain.LoginLog) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.LoginLog, error)
	ListAll(ctx context.Context, limit int) ([]*domain.LoginLog, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// DetectionRepository stores posture detection history.
type DetectionRepository interface {
	Create(ctx context.Context, detection *domain.Detection) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.Detection, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
