package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/ergosit/posture-auth/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minAge = 12
	maxAge = 120

	verifyEmailPath = "/api/auth/verify-email"
)

// AuthServiceConfig wires the collaborators of the auth service.
type AuthServiceConfig struct {
	Users         repository.UserRepository
	Tokens        *TokenService
	Hasher        PasswordHasher
	OTP           *OTPService
	LoginLogs     LoginLogService
	Verifier      IdentityVerifier
	Mailer        Mailer
	Logger        *zap.Logger
	BaseURL       string
	VerifyTimeout time.Duration
}

// authService implements AuthService interface
type authService struct {
	users         repository.UserRepository
	tokens        *TokenService
	hasher        PasswordHasher
	otp           *OTPService
	loginLogs     LoginLogService
	verifier      IdentityVerifier
	mailer        Mailer
	logger        *zap.Logger
	baseURL       string
	verifyTimeout time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	verifyTimeout := cfg.VerifyTimeout
	if verifyTimeout <= 0 {
		verifyTimeout = 5 * time.Second
	}

	return &authService{
		users:         cfg.Users,
		tokens:        cfg.Tokens,
		hasher:        cfg.Hasher,
		otp:           cfg.OTP,
		loginLogs:     cfg.LoginLogs,
		verifier:      cfg.Verifier,
		mailer:        cfg.Mailer,
		logger:        logger,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		verifyTimeout: verifyTimeout,
	}
}

// Register creates an unverified password account and mails a verification link.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	email := utils.SanitizeEmail(req.Email)
	phone := utils.NormalizePhone(req.Phone)
	fullName := strings.TrimSpace(req.FullName)
	gender := strings.TrimSpace(req.Gender)

	fields := fieldErrors{}
	if fullName == "" {
		fields.add("full_name", "is required")
	}
	if !utils.ValidateEmail(email) {
		fields.add("email", "must be a valid email address")
	}
	if !utils.ValidatePhone(phone) {
		fields.add("phone", "must be a valid phone number")
	}
	if !utils.ValidatePassword(req.Password) {
		fields.add("password", fmt.Sprintf("must be between %d and %d characters", utils.MinPasswordLength, utils.MaxPasswordLength))
	}
	if req.Age < minAge || req.Age > maxAge {
		fields.add("age", fmt.Sprintf("must be between %d and %d", minAge, maxAge))
	}
	if gender == "" {
		fields.add("gender", "is required")
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken := uuid.New().String()
	user := &domain.User{
		Email:             email,
		Phone:             &phone,
		FullName:          fullName,
		Age:               req.Age,
		Gender:            gender,
		Role:              domain.RoleUser,
		ProfilePictureURL: domain.DefaultProfilePictureURL,
		PasswordHash:      &passwordHash,
		IsVerified:        false,
		VerificationToken: &verificationToken,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapDuplicate(err, "failed to create user")
	}

	link := s.baseURL + verifyEmailPath + "?token=" + url.QueryEscape(verificationToken)
	s.deliver("verification", email, func() error {
		return s.mailer.SendVerification(ctx, email, fullName, link)
	})

	return user, nil
}

// Login authenticates with email and password. Unknown email and wrong
// password fail identically; only the recorded subject differs.
func (s *authService) Login(ctx context.Context, email, password string, client domain.ClientInfo) (*dto.AuthResponse, error) {
	user, err := s.checkPassword(ctx, domain.LoginMethodPassword, email, password, client)
	if err != nil {
		return nil, err
	}

	if !user.IsVerified {
		return nil, s.fail(ctx, &user.ID, domain.LoginMethodPassword, client, ErrUnverified)
	}

	return s.succeed(ctx, user, domain.LoginMethodPassword, client)
}

// AdminLogin authenticates an administrator for the browser console.
func (s *authService) AdminLogin(ctx context.Context, email, password string, client domain.ClientInfo) (*domain.User, error) {
	user, err := s.checkPassword(ctx, domain.LoginMethodAdmin, email, password, client)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, s.fail(ctx, &user.ID, domain.LoginMethodAdmin, client, ErrForbidden)
	}

	if err := s.loginLogs.Record(ctx, &user.ID, domain.LoginMethodAdmin, domain.LoginStatusSuccess, client); err != nil {
		return nil, err
	}
	return user, nil
}

// checkPassword resolves the account for a password attempt and records every
// failure it detects.
func (s *authService) checkPassword(ctx context.Context, method, email, password string, client domain.ClientInfo) (*domain.User, error) {
	email = utils.SanitizeEmail(email)

	fields := fieldErrors{}
	if email == "" {
		fields.add("email", "is required")
	}
	if password == "" {
		fields.add("password", "is required")
	}
	if err := fields.err(); err != nil {
		return nil, s.fail(ctx, nil, method, client, err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.fail(ctx, nil, method, client, ErrAuthenticationFailed)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() || !s.hasher.Verify(password, *user.PasswordHash) {
		return nil, s.fail(ctx, &user.ID, method, client, ErrAuthenticationFailed)
	}

	return user, nil
}

// GoogleLogin verifies a Google ID token and signs the holder in.
// A missing token is still audited as a failed attempt.
func (s *authService) GoogleLogin(ctx context.Context, idToken string, client domain.ClientInfo) (*dto.AuthResponse, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, s.fail(ctx, nil, domain.LoginMethodGoogle, client,
			&ValidationError{Fields: map[string]string{"id_token": "is required"}})
	}

	var identity *domain.ExternalIdentity

	if s.verifier != nil {
		verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
		verified, err := s.verifier.Verify(verifyCtx, idToken)
		cancel()
		if err != nil {
			s.logger.Info("identity assertion rejected", zap.Error(err))
		} else {
			identity = verified
		}
	}

	return s.FederatedLogin(ctx, identity, client)
}

// FederatedLogin signs in a verified external identity, creating an account
// on first sight. A nil identity records a failed attempt.
func (s *authService) FederatedLogin(ctx context.Context, identity *domain.ExternalIdentity, client domain.ClientInfo) (*dto.AuthResponse, error) {
	if identity == nil || utils.SanitizeEmail(identity.Email) == "" {
		return nil, s.fail(ctx, nil, domain.LoginMethodGoogle, client, ErrAuthenticationFailed)
	}

	user, err := s.resolveFederatedUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.succeed(ctx, user, domain.LoginMethodGoogle, client)
}

// resolveFederatedUser reuses the account with the asserted email, keeping its
// role, or creates a verified user account without a password.
func (s *authService) resolveFederatedUser(ctx context.Context, identity *domain.ExternalIdentity) (*domain.User, error) {
	email := utils.SanitizeEmail(identity.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	fullName := strings.TrimSpace(identity.Name)
	if fullName == "" {
		fullName = strings.SplitN(email, "@", 2)[0]
	}
	picture := identity.Picture
	if picture == "" {
		picture = domain.DefaultProfilePictureURL
	}

	user = &domain.User{
		Email:             email,
		FullName:          fullName,
		Role:              domain.RoleUser,
		ProfilePictureURL: picture,
		IsVerified:        true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// lost a race with a concurrent first login
			return s.users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}

	s.logger.Info("created federated account",
		zap.String("user_id", user.ID),
		zap.String("provider", identity.Provider),
	)
	return user, nil
}

func (s *authService) succeed(ctx context.Context, user *domain.User, method string, client domain.ClientInfo) (*dto.AuthResponse, error) {
	resp, err := s.newAuthResponse(user)
	if err != nil {
		return nil, s.fail(ctx, &user.ID, method, client, err)
	}

	if err := s.loginLogs.Record(ctx, &user.ID, method, domain.LoginStatusSuccess, client); err != nil {
		return nil, err
	}
	return resp, nil
}

// fail records a failed attempt and returns cause. A failed audit write
// replaces cause so the caller sees a storage error.
func (s *authService) fail(ctx context.Context, userID *string, method string, client domain.ClientInfo, cause error) error {
	if err := s.loginLogs.Record(ctx, userID, method, domain.LoginStatusFailed, client); err != nil {
		return err
	}
	return cause
}

func (s *authService) ValidateToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	return s.tokens.Validate(token)
}

// VerifyEmail consumes a verification token and marks its owner verified.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &ValidationError{Fields: map[string]string{"token": "is required"}}
	}

	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ValidationError{Fields: map[string]string{"token": "is invalid or already used"}}
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	return nil
}

func (s *authService) VerificationStatus(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.IsVerified, nil
}

// RequestPasswordReset issues a reset code and mails it. Any earlier code
// stops working.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = utils.SanitizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := s.otp.Issue(ctx, email)
	if err != nil {
		return err
	}

	s.deliver("reset code", email, func() error {
		return s.mailer.SendResetCode(ctx, email, user.FullName, code)
	})
	return nil
}

// VerifyResetCode checks a code without consuming it.
func (s *authService) VerifyResetCode(ctx context.Context, email, code string) error {
	ok, err := s.otp.Check(ctx, utils.SanitizeEmail(email), code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	return nil
}

// ResetPassword replaces the password when code is valid, then clears the code.
func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = utils.SanitizeEmail(email)

	if !utils.ValidatePassword(newPassword) {
		return &ValidationError{Fields: map[string]string{
			"new_password": fmt.Sprintf("must be between %d and %d characters", utils.MinPasswordLength, utils.MaxPasswordLength),
		}}
	}

	ok, err := s.otp.Check(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPasswordHash(ctx, email, hash); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	return s.otp.Clear(ctx, email)
}

// deliver sends a mail and only logs a failure.
func (s *authService) deliver(kind, to string, send func() error) {
	if s.mailer == nil {
		return
	}
	if err := send(); err != nil {
		s.logger.Warn("failed to send email",
			zap.String("kind", kind),
			zap.String("to", to),
			zap.Error(err),
		)
	}
}

func mapDuplicate(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrDuplicatePhone):
		return ErrPhoneTaken
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
