package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ergosit/posture-auth/internal/domain"
	"github.com/ergosit/posture-auth/internal/repository"
	"github.com/google/uuid"
)

type DetectionRepository struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Detection
}

var _ repository.DetectionRepository = (*DetectionRepository)(nil)

func NewDetectionRepository() *DetectionRepository {
	return &DetectionRepository{byUser: make(map[string][]domain.Detection)}
}

func (r *DetectionRepository) Create(_ context.Context, detection *domain.Detection) error {
	if detection.ID == "" {
		detection.ID = uuid.New().String()
	}
	if detection.Timestamp.IsZero() {
		detection.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[detection.UserID] = append(r.byUser[detection.UserID], *detection)
	return nil
}

func (r *DetectionRepository) ListByUserID(_ context.Context, userID string, limit int) ([]*domain.Detection, error) {
	r.mu.RLock()
	stored := r.byUser[userID]
	out := make([]*domain.Detection, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		d := stored[i]
		out = append(out, &d)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *DetectionRepository) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := int64(len(r.byUser[userID]))
	delete(r.byUser, userID)
	return deleted, nil
}
