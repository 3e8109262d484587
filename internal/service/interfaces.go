package service

import (
	"context"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/dto"
)

// AuthService covers registration, the login flows and password recovery.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string, client domain.ClientInfo) (*dto.AuthResponse, error)
	AdminLogin(ctx context.Context, email, password string, client domain.ClientInfo) (*domain.User, error)
	GoogleLogin(ctx context.Context, idToken string, client domain.ClientInfo) (*dto.AuthResponse, error)
	FederatedLogin(ctx context.Context, identity *domain.ExternalIdentity, client domain.ClientInfo) (*dto.AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
	VerifyEmail(ctx context.Context, token string) error
	VerificationStatus(ctx context.Context, email string) (bool, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// AccountService manages an authenticated user's own account.
type AccountService interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// LoginLogService records and reads login attempts.
type LoginLogService interface {
	Record(ctx context.Context, userID *string, method, status string, client domain.ClientInfo) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.LoginLog, error)
	ListAll(ctx context.Context, limit int) ([]*domain.LoginLog, error)
	Purge(ctx context.Context, userID string) (int64, error)
}

// DetectionService stores posture detections per user.
type DetectionService interface {
	Record(ctx context.Context, userID, posture string, angle float64) (*domain.Detection, error)
	History(ctx context.Context, userID string, limit int) ([]*domain.Detection, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

// PasswordHasher hashes secrets and checks them against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// IdentityVerifier checks a third-party identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*domain.ExternalIdentity, error)
}

// Mailer delivers account emails. Delivery is best effort.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, link string) error
	SendResetCode(ctx context.Context, to, name, code string) error
}
