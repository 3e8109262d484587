package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/ergosit/posture-auth/internal/utils"
)

// TokenService issues and validates bearer tokens.
type TokenService struct {
	users repository.UserRepository
	jwt   *utils.JWTManager
}

func NewTokenService(users repository.UserRepository, jwt *utils.JWTManager) *TokenService {
	return &TokenService{users: users, jwt: jwt}
}

// Issue signs a token carrying the user's current role and email.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("cannot issue token for %s: %w", userID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return s.IssueFor(user)
}

// IssueFor signs a token for an already loaded user.
func (s *TokenService) IssueFor(user *domain.User) (string, error) {
	return s.jwt.GenerateToken(user)
}

// Validate returns the token's claims. It never touches storage, so a role
// change only takes effect once the holder obtains a new token.
func (s *TokenService) Validate(token string) (*domain.TokenClaims, error) {
	return s.jwt.ValidateToken(token)
}

// ExpiresIn returns the token lifetime in seconds.
func (s *TokenService) ExpiresIn() int {
	return s.jwt.ExpirySeconds()
}
