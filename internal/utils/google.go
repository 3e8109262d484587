package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/ergosit/posture-auth/internal/domain"
)

// ErrIdentityRejected is returned when an ID token cannot be trusted.
var ErrIdentityRejected = errors.New("identity assertion rejected")

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against a set of OAuth client IDs.
type GoogleVerifier struct {
	audiences []string
	validate  validateFunc
}

func NewGoogleVerifier(audiences []string) *GoogleVerifier {
	return &GoogleVerifier{
		audiences: audiences,
		validate:  idtoken.Validate,
	}
}

// Verify returns the asserted identity, or nil and an error wrapping
// ErrIdentityRejected. Partial claims are never returned.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*domain.ExternalIdentity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrIdentityRejected)
	}
	if len(v.audiences) == 0 {
		return nil, fmt.Errorf("%w: no audiences configured", ErrIdentityRejected)
	}

	var (
		payload *idtoken.Payload
		lastErr error
	)
	for _, audience := range v.audiences {
		p, err := v.validate(ctx, token, audience)
		if err == nil {
			payload = p
			break
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrIdentityRejected, ctx.Err())
		}
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityRejected, lastErr)
	}

	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrIdentityRejected, payload.Issuer)
	}

	email, _ := payload.Claims["email"].(string)
	email = SanitizeEmail(email)
	if email == "" || !ValidateEmail(email) {
		return nil, fmt.Errorf("%w: token carries no usable email", ErrIdentityRejected)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified by provider", ErrIdentityRejected)
	}

	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &domain.ExternalIdentity{
		Provider: "google",
		Subject:  payload.Subject,
		Email:    email,
		Name:     name,
		Picture:  picture,
	}, nil
}
