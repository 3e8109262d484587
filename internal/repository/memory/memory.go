// Package memory provides map-backed repositories for local runs and tests.
package memory

import "github.com/ergosit/posture-auth/internal/repository"

// NewRepositories creates a repository set that keeps everything in process memory.
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:      NewUserRepository(),
		LoginLog:  NewLoginLogRepository(),
		Detection: NewDetectionRepository(),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
