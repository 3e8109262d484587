package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(claims map[string]interface{}) *idtoken.Payload {
	return &idtoken.Payload{
		Issuer:   "https://accounts.google.com",
		Audience: "android-client",
		Subject:  "10987654321",
		Expires:  time.Now().Add(time.Hour).Unix(),
		IssuedAt: time.Now().Unix(),
		Claims:   claims,
	}
}

func TestGoogleVerifier_TriesEachAudience(t *testing.T) {
	var tried []string
	v := &GoogleVerifier{
		audiences: []string{"web-client", "android-client"},
		validate: func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			tried = append(tried, audience)
			if audience != "android-client" {
				return nil, errors.New("audience mismatch")
			}
			return payload(map[string]interface{}{
				"email":          "Budi@Example.com",
				"email_verified": true,
				"name":           "Budi",
				"picture":        "https://lh3.googleusercontent.com/a/photo",
			}), nil
		},
	}

	identity, err := v.Verify(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"web-client", "android-client"}, tried)
	assert.Equal(t, "budi@example.com", identity.Email)
	assert.Equal(t, "Budi", identity.Name)
	assert.Equal(t, "10987654321", identity.Subject)
	assert.Equal(t, "google", identity.Provider)
}

func TestGoogleVerifier_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		validate validateFunc
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "bad signature",
			token: "tok",
			validate: func(context.Context, string, string) (*idtoken.Payload, error) {
				return nil, errors.New("invalid signature")
			},
		},
		{
			name:  "wrong issuer",
			token: "tok",
			validate: func(context.Context, string, string) (*idtoken.Payload, error) {
				p := payload(map[string]interface{}{"email": "a@example.com"})
				p.Issuer = "https://evil.example.com"
				return p, nil
			},
		},
		{
			name:  "missing email",
			token: "tok",
			validate: func(context.Context, string, string) (*idtoken.Payload, error) {
				return payload(map[string]interface{}{"name": "No Email"}), nil
			},
		},
		{
			name:  "unverified email",
			token: "tok",
			validate: func(context.Context, string, string) (*idtoken.Payload, error) {
				return payload(map[string]interface{}{"email": "a@example.com", "email_verified": false}), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &GoogleVerifier{audiences: []string{"android-client"}, validate: tt.validate}
			identity, err := v.Verify(context.Background(), tt.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrIdentityRejected)
		})
	}
}

func TestGoogleVerifier_TimeoutIsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := &GoogleVerifier{
		audiences: []string{"a", "b"},
		validate: func(ctx context.Context, _, _ string) (*idtoken.Payload, error) {
			return nil, ctx.Err()
		},
	}

	identity, err := v.Verify(ctx, "tok")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, ErrIdentityRejected)
}

func TestGoogleVerifier_NoAudiences(t *testing.T) {
	v := NewGoogleVerifier(nil)
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrIdentityRejected)
}
