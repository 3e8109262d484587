package repository

import (
	"github.com/ergosit/posture-auth/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User      UserRepository
	LoginLog  LoginLogRepository
	Detection DetectionRepository
}

// NewRepositories creates all postgres-backed repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		LoginLog:  NewLoginLogRepository(db),
		Detection: NewDetectionRepository(db),
	}
}
