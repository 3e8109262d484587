package service

import (
	"context"
	"testing"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/ergosit/posture-auth/internal/repository/memory"
	"github.com/ergosit/posture-auth/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerification(ctx context.Context, to, name, link string) error {
	args := m.Called(ctx, to, name, link)
	return args.Error(0)
}

func (m *mockMailer) SendResetCode(ctx context.Context, to, name, code string) error {
	args := m.Called(ctx, to, name, code)
	return args.Error(0)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, assertion string) (*domain.ExternalIdentity, error) {
	args := m.Called(ctx, assertion)
	identity, _ := args.Get(0).(*domain.ExternalIdentity)
	return identity, args.Error(1)
}

type testEnv struct {
	repos    *repository.Repositories
	clock    *testClock
	jwt      *utils.JWTManager
	tokens   *TokenService
	otp      *OTPService
	logs     LoginLogService
	mailer   *mockMailer
	verifier *mockVerifier
	auth     AuthService
	accounts AccountService
	hasher   *utils.PasswordHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repos:    memory.NewRepositories(),
		clock:    &testClock{t: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)},
		mailer:   &mockMailer{},
		verifier: &mockVerifier{},
		hasher:   utils.NewPasswordHasher(bcrypt.MinCost),
	}

	env.jwt = utils.NewJWTManager(testSecret, 7*24*time.Hour).WithClock(env.clock.Now)
	env.tokens = NewTokenService(env.repos.User, env.jwt)
	env.otp = NewOTPService(env.repos.User, 10*time.Minute, nil).WithClock(env.clock.Now)
	env.logs = NewLoginLogService(env.repos.LoginLog, nil)
	env.auth = NewAuthService(AuthServiceConfig{
		Users:         env.repos.User,
		Tokens:        env.tokens,
		Hasher:        env.hasher,
		OTP:           env.otp,
		LoginLogs:     env.logs,
		Verifier:      env.verifier,
		Mailer:        env.mailer,
		Logger:        zap.NewNop(),
		BaseURL:       "http://localhost:8080/",
		VerifyTimeout: time.Second,
	})
	env.accounts = NewAccountService(env.repos.User, env.repos.Detection, env.hasher, zap.NewNop())

	return env
}

func validRegistration(email, phone string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		FullName: "Dewi Lestari",
		Phone:    phone,
		Email:    email,
		Password: "secret1",
		Age:      27,
		Gender:   "female",
	}
}

// registerVerified creates a verified password account.
func (env *testEnv) registerVerified(t *testing.T, email, phone string) *domain.User {
	t.Helper()
	env.mailer.On("SendVerification", mock.Anything, email, mock.Anything, mock.Anything).Return(nil).Once()

	user, err := env.auth.Register(context.Background(), validRegistration(email, phone))
	require.NoError(t, err)
	require.NoError(t, env.repos.User.MarkVerified(context.Background(), user.ID))

	verified, err := env.repos.User.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	return verified
}

func (env *testEnv) allLogs(t *testing.T) []*domain.LoginLog {
	t.Helper()
	logs, err := env.logs.ListAll(context.Background(), MaxLogLimit)
	require.NoError(t, err)
	return logs
}

var testClient = domain.ClientInfo{UserAgent: "okhttp/4.12", IPAddress: "10.0.0.7"}
