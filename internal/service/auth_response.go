package service

import (
	"fmt"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/dto"
)

// newAuthResponse issues a token for user and wraps it with the user view.
func (s *authService) newAuthResponse(user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.IssueFor(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokens.ExpiresIn(),
		User:        dto.NewUserInfo(user),
	}, nil
}
