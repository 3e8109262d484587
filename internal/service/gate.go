package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/ergosit/posture-auth/internal/domain"
)

// Source identifies the credential that produced a verdict.
type Source string

const (
	SourceNone    Source = ""
	SourceSession Source = "session"
	SourceBearer  Source = "bearer"
	SourceAPIKey  Source = "api_key"
)

// DenyReason explains a denial. It is empty when access is allowed.
type DenyReason string

const (
	ReasonNone            DenyReason = ""
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonTokenExpired    DenyReason = "token_expired"
	ReasonTokenInvalid    DenyReason = "token_invalid"
	ReasonForbidden       DenyReason = "forbidden"
	ReasonInvalidAPIKey   DenyReason = "invalid_api_key"
)

// SessionMarker is the server-side record of a console login.
type SessionMarker struct {
	UserID string
	Role   string
}

// Credentials are everything a request presented.
type Credentials struct {
	Session     *SessionMarker
	BearerToken string
	// MalformedAuthorization is set when an Authorization header was present
	// but did not carry a bearer token.
	MalformedAuthorization bool
	APIKey                 string
}

// Policy describes what a route requires.
type Policy struct {
	RequireAdmin bool
	AllowAPIKey  bool
}

// Verdict is the outcome of a gate decision.
type Verdict struct {
	Allowed bool
	Source  Source
	Reason  DenyReason
	Claims  *domain.TokenClaims
	Session *SessionMarker
}

// SubjectID returns the user the request acts as, if any.
func (v Verdict) SubjectID() string {
	switch {
	case v.Claims != nil:
		return v.Claims.UserID
	case v.Session != nil:
		return v.Session.UserID
	default:
		return ""
	}
}

// Role returns the role the request acts with, if any.
func (v Verdict) Role() string {
	switch {
	case v.Claims != nil:
		return v.Claims.Role
	case v.Session != nil:
		return v.Session.Role
	default:
		return ""
	}
}

// Err maps a denial onto the service error taxonomy.
func (v Verdict) Err() error {
	switch v.Reason {
	case ReasonNone:
		return nil
	case ReasonTokenExpired:
		return ErrTokenExpired
	case ReasonTokenInvalid:
		return ErrTokenInvalid
	case ReasonForbidden:
		return ErrForbidden
	case ReasonInvalidAPIKey:
		return ErrInvalidAPIKey
	default:
		return ErrUnauthenticated
	}
}

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	Validate(token string) (*domain.TokenClaims, error)
}

// Gate decides whether a request may reach a protected operation.
type Gate struct {
	tokens  TokenValidator
	apiKey  string
	metrics *Metrics
}

func NewGate(tokens TokenValidator, apiKey string, metrics *Metrics) *Gate {
	return &Gate{tokens: tokens, apiKey: apiKey, metrics: metrics}
}

// Decide evaluates credentials in a fixed order: an admin session, then a
// bearer token, then an API key when the policy accepts one. The first
// credential present determines the verdict.
func (g *Gate) Decide(ctx context.Context, creds Credentials, policy Policy) Verdict {
	v := g.decide(creds, policy)
	g.metrics.GateVerdict(ctx, v.Allowed, v.Reason)
	return v
}

func (g *Gate) decide(creds Credentials, policy Policy) Verdict {
	if creds.Session != nil && creds.Session.Role == domain.RoleAdmin {
		return Verdict{Allowed: true, Source: SourceSession, Session: creds.Session}
	}

	if creds.MalformedAuthorization {
		return Verdict{Source: SourceBearer, Reason: ReasonTokenInvalid}
	}

	if creds.BearerToken != "" {
		claims, err := g.tokens.Validate(creds.BearerToken)
		switch {
		case err == nil:
		case errors.Is(err, ErrTokenExpired):
			return Verdict{Source: SourceBearer, Reason: ReasonTokenExpired}
		default:
			return Verdict{Source: SourceBearer, Reason: ReasonTokenInvalid}
		}

		if policy.RequireAdmin && claims.Role != domain.RoleAdmin {
			return Verdict{Source: SourceBearer, Reason: ReasonForbidden, Claims: claims}
		}
		return Verdict{Allowed: true, Source: SourceBearer, Claims: claims}
	}

	if policy.AllowAPIKey && creds.APIKey != "" {
		if g.apiKey != "" && subtle.ConstantTimeCompare([]byte(creds.APIKey), []byte(g.apiKey)) == 1 {
			return Verdict{Allowed: true, Source: SourceAPIKey}
		}
		return Verdict{Source: SourceAPIKey, Reason: ReasonInvalidAPIKey}
	}

	return Verdict{Reason: ReasonUnauthenticated}
}
