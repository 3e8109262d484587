package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/pkg/database"
	"github.com/google/uuid"
)

// detectionRepository implements DetectionRepository interface
type detectionRepository struct {
	db *database.Postgres
}

// NewDetectionRepository creates a new detection history repository
func NewDetectionRepository(db *database.Postgres) DetectionRepository {
	return &detectionRepository{db: db}
}

func (r *detectionRepository) Create(ctx context.Context, detection *domain.Detection) error {
	query := `
		INSERT INTO detection_history (id, user_id, posture, angle, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if detection.ID == "" {
		detection.ID = uuid.New().String()
	}
	if detection.Timestamp.IsZero() {
		detection.Timestamp = time.Now().UTC()
	}

	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	_, err := r.db.DB.ExecContext(ctx, query,
		detection.ID,
		detection.UserID,
		detection.Posture,
		detection.Angle,
		detection.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create detection: %w", err)
	}

	return nil
}

// ListByUserID returns a user's detections, newest first
func (r *detectionRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*domain.Detection, error) {
	query := `
		SELECT id, user_id, posture, angle, recorded_at
		FROM detection_history
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	rows, err := r.db.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	detections := make([]*domain.Detection, 0)
	for rows.Next() {
		d := &domain.Detection{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.Posture, &d.Angle, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detections: %w", err)
	}

	return detections, nil
}

// DeleteByUserID removes a user's detection history
func (r *detectionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.db.Context(ctx)
	defer cancel()

	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM detection_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete detections: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
