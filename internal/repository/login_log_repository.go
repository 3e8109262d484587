package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/pkg/database"
	"github.com/google/uuid"
)

// loginLogRepository implements LoginLogRepository interface
type loginLogRepository struct {
	db *database.Postgres
}

// NewLoginLogRepository creates a new login log repository
func NewLoginLogRepository(db *database.Postgres) LoginLogRepository {
	return &loginLogRepository{db: db}
}

// Create appends a login attempt
func (r *loginLogRepository) Create(ctx context.Context, entry *domain.LoginLog) error {
	query := `
		INSERT INTO login_logs (id, user_id, method, status, user_agent, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	_, err := r.db.DB.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Method,
		entry.Status,
		entry.UserAgent,
		entry.IPAddress,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create login log: %w", err)
	}

	return nil
}

// ListByUserID returns a user's login attempts, newest first
func (r *loginLogRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.LoginLog, error) {
	query := `
		SELECT id, user_id, method, status, user_agent, ip_address, created_at
		FROM login_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

// ListAll returns every login attempt, newest first
func (r *loginLogRepository) ListAll(ctx context.Context, limit int) ([]*domain.LoginLog, error) {
	query := `
		SELECT id, user_id, method, status, user_agent, ip_address, created_at
		FROM login_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *loginLogRepository) list(ctx context.Context, query string, args ...any) ([]*domain.LoginLog, error) {
	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if malformedID(err) {
			return []*domain.LoginLog{}, nil
		}
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.LoginLog, 0)
	for rows.Next() {
		entry := &domain.LoginLog{}
		var userID sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&userID,
			&entry.Method,
			&entry.Status,
			&entry.UserAgent,
			&entry.IPAddress,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan login log: %w", err)
		}

		if userID.Valid {
			entry.UserID = &userID.String
		}

		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login logs: %w", err)
	}

	return logs, nil
}

// DeleteByUserID purges every login attempt recorded for a user
func (r *loginLogRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM login_logs WHERE user_id = $1`, userID)
	if err != nil {
		if malformedID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to delete login logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
