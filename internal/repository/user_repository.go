package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/pkg/database"
	"github.com/google/uuid"
)

const userColumns = `id, email, phone, full_name, age, gender, role, profile_picture_url,
	password_hash, is_verified, verification_token, otp_code, otp_expiry, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var phone, passwordHash, verificationToken, otpCode sql.NullString
	var otpExpiry sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&phone,
		&user.FullName,
		&user.Age,
		&user.Gender,
		&user.Role,
		&user.ProfilePictureURL,
		&passwordHash,
		&user.IsVerified,
		&verificationToken,
		&otpCode,
		&otpExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		user.Phone = &phone.String
	}
	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if verificationToken.Valid {
		user.VerificationToken = &verificationToken.String
	}
	if otpCode.Valid {
		user.OTPCode = &otpCode.String
	}
	if otpExpiry.Valid {
		user.OTPExpiry = &otpExpiry.Time
	}

	return user, nil
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, phone, full_name, age, gender, role, profile_picture_url,
			password_hash, is_verified, verification_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

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

	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Phone,
		user.FullName,
		user.Age,
		user.Gender,
		user.Role,
		user.ProfilePictureURL,
		user.PasswordHash,
		user.IsVerified,
		user.VerificationToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, dup)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || malformedID(err) {
			return nil, fmt.Errorf("user with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByPhone retrieves a user by phone
func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getOne(ctx, "phone", phone)
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByVerificationToken retrieves the user an email verification link was issued to
func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getOne(ctx, "verification_token", token)
}

// exec runs a single-row update and reports ErrNotFound when nothing matched.
func (r *userRepository) exec(ctx context.Context, what, key string, query string, args ...any) error {
	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return fmt.Errorf("failed to %s: %w", what, dup)
		}
		if malformedID(err) {
			return fmt.Errorf("user %s not found: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to %s: %w", what, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %s not found: %w", key, ErrNotFound)
	}

	return nil
}

// MarkVerified flags the user as verified and consumes the verification token
func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL, updated_at = $2
		WHERE id = $1
	`
	return r.exec(ctx, "mark user verified", id, query, id, time.Now().UTC())
}

// SetPasswordHash replaces the stored password hash
func (r *userRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE email = $1
	`
	return r.exec(ctx, "set password", email, query, email, hash, time.Now().UTC())
}

// SetOTP stores a one-time code, replacing any previous one
func (r *userRepository) SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET otp_code = $2, otp_expiry = $3, updated_at = $4
		WHERE email = $1
	`
	return r.exec(ctx, "set otp", email, query, email, code, expiresAt.UTC(), time.Now().UTC())
}

// ClearOTP removes the one-time code and its expiry together
func (r *userRepository) ClearOTP(ctx context.Context, email string) error {
	query := `
		UPDATE users
		SET otp_code = NULL, otp_expiry = NULL, updated_at = $2
		WHERE email = $1
	`
	return r.exec(ctx, "clear otp", email, query, email, time.Now().UTC())
}

// UpdateProfile applies the non-nil fields of update
func (r *userRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) error {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			age = COALESCE($4, age),
			gender = COALESCE($5, gender),
			profile_picture_url = COALESCE($6, profile_picture_url),
			updated_at = $7
		WHERE id = $1
	`
	return r.exec(ctx, "update profile", id, query,
		id,
		update.FullName,
		update.Phone,
		update.Age,
		update.Gender,
		update.ProfilePictureURL,
		time.Now().UTC(),
	)
}

// Delete removes the user record
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete user", id, `DELETE FROM users WHERE id = $1`, id)
}
