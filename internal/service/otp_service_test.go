package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOTPService_IssueAndCheck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "otp@example.com", "081200000100")

	code, err := env.otp.Issue(ctx, "otp@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	ok, err := env.otp.Check(ctx, "otp@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.otp.Check(ctx, "otp@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok, "checking must not consume the code")

	ok, err = env.otp.Check(ctx, "otp@example.com", wrongCode(code))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPService_Expiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "late@example.com", "081200000101")

	code, err := env.otp.Issue(ctx, "late@example.com")
	require.NoError(t, err)

	env.clock.Advance(9*time.Minute + 59*time.Second)
	ok, err := env.otp.Check(ctx, "late@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	env.clock.Advance(time.Second)
	ok, err = env.otp.Check(ctx, "late@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok, "a code is rejected once its expiry is reached")
}

func TestOTPService_NewCodeSupersedesOld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "twice@example.com", "081200000102")

	codes := []string{"111111", "222222"}
	env.otp.generate = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	_, err := env.otp.Issue(ctx, "twice@example.com")
	require.NoError(t, err)
	_, err = env.otp.Issue(ctx, "twice@example.com")
	require.NoError(t, err)

	ok, err := env.otp.Check(ctx, "twice@example.com", "111111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.otp.Check(ctx, "twice@example.com", "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOTPService_UnknownAndClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ok, err := env.otp.Check(ctx, "ghost@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.otp.Issue(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	env.registerVerified(t, "clear@example.com", "081200000103")
	code, err := env.otp.Issue(ctx, "clear@example.com")
	require.NoError(t, err)
	require.NoError(t, env.otp.Clear(ctx, "clear@example.com"))

	ok, err = env.otp.Check(ctx, "clear@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.otp.Check(ctx, "clear@example.com", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordReset_Flow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "reset@example.com", "081200000110")

	var code string
	env.mailer.On("SendResetCode", mock.Anything, "reset@example.com", "Dewi Lestari", mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(3) }).
		Return(nil).Once()

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "Reset@Example.com"))
	require.Len(t, code, 6)

	assert.ErrorIs(t, env.auth.VerifyResetCode(ctx, "reset@example.com", wrongCode(code)), ErrInvalidOTP)
	require.NoError(t, env.auth.VerifyResetCode(ctx, "reset@example.com", code))

	err := env.auth.ResetPassword(ctx, "reset@example.com", code, "123")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.auth.ResetPassword(ctx, "reset@example.com", code, "brand-new"))

	user, err := env.repos.User.GetByEmail(ctx, "reset@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.OTPCode, "a successful reset clears the code")
	assert.Nil(t, user.OTPExpiry)

	assert.ErrorIs(t, env.auth.ResetPassword(ctx, "reset@example.com", code, "again-new"), ErrInvalidOTP)

	_, err = env.auth.Login(ctx, "reset@example.com", "secret1", testClient)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = env.auth.Login(ctx, "reset@example.com", "brand-new", testClient)
	assert.NoError(t, err)

	env.mailer.AssertExpectations(t)
}

func TestPasswordReset_ExpiredCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerVerified(t, "slow@example.com", "081200000111")

	var code string
	env.mailer.On("SendResetCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(3) }).
		Return(nil).Once()

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "slow@example.com"))
	env.clock.Advance(11 * time.Minute)

	assert.ErrorIs(t, env.auth.ResetPassword(ctx, "slow@example.com", code, "brand-new"), ErrInvalidOTP)
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(t, env.auth.RequestPasswordReset(context.Background(), "none@example.com"), ErrNotFound)
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
