package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/google/uuid"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Phone = clonePtr(u.Phone)
	c.PasswordHash = clonePtr(u.PasswordHash)
	c.VerificationToken = clonePtr(u.VerificationToken)
	c.OTPCode = clonePtr(u.OTPCode)
	c.OTPExpiry = clonePtr(u.OTPExpiry)
	return &c
}

// conflict must be called with the lock held.
func (r *UserRepository) conflict(exceptID, email string, phone *string) error {
	for id, u := range r.users {
		if id == exceptID {
			continue
		}
		if email != "" && u.Email == email {
			return repository.ErrDuplicateEmail
		}
		if phone != nil && u.Phone != nil && *u.Phone == *phone {
			return repository.ErrDuplicatePhone
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict("", user.Email, user.Phone); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) find(match func(*domain.User) bool, what string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("user with %s not found: %w", what, repository.ErrNotFound)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }, "email "+email)
}

func (r *UserRepository) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Phone != nil && *u.Phone == phone }, "phone "+phone)
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s not found: %w", id, repository.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByVerificationToken(_ context.Context, token string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	}, "verification token")
}

// mutate applies fn to the first user accepted by match.
func (r *UserRepository) mutate(match func(*domain.User) bool, key string, fn func(*domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if !match(u) {
			continue
		}
		if err := fn(u); err != nil {
			return err
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	}
	return fmt.Errorf("user %s not found: %w", key, repository.ErrNotFound)
}

func byID(id string) func(*domain.User) bool {
	return func(u *domain.User) bool { return u.ID == id }
}

func byEmail(email string) func(*domain.User) bool {
	return func(u *domain.User) bool { return u.Email == email }
}

func (r *UserRepository) MarkVerified(_ context.Context, id string) error {
	return r.mutate(byID(id), id, func(u *domain.User) error {
		u.IsVerified = true
		u.VerificationToken = nil
		return nil
	})
}

func (r *UserRepository) SetPasswordHash(_ context.Context, email, hash string) error {
	return r.mutate(byEmail(email), email, func(u *domain.User) error {
		u.PasswordHash = &hash
		return nil
	})
}

func (r *UserRepository) SetOTP(_ context.Context, email, code string, expiresAt time.Time) error {
	return r.mutate(byEmail(email), email, func(u *domain.User) error {
		expiry := expiresAt.UTC()
		u.OTPCode = &code
		u.OTPExpiry = &expiry
		return nil
	})
}

func (r *UserRepository) ClearOTP(_ context.Context, email string) error {
	return r.mutate(byEmail(email), email, func(u *domain.User) error {
		u.OTPCode = nil
		u.OTPExpiry = nil
		return nil
	})
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) error {
	return r.mutate(byID(id), id, func(u *domain.User) error {
		if update.Phone != nil {
			if err := r.conflict(id, "", update.Phone); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			u.Phone = clonePtr(update.Phone)
		}
		if update.FullName != nil {
			u.FullName = *update.FullName
		}
		if update.Age != nil {
			u.Age = *update.Age
		}
		if update.Gender != nil {
			u.Gender = *update.Gender
		}
		if update.ProfilePictureURL != nil {
			u.ProfilePictureURL = *update.ProfilePictureURL
		}
		return nil
	})
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %s not found: %w", id, repository.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}
