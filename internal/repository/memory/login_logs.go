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

type LoginLogRepository struct {
	mu      sync.RWMutex
	entries []*domain.LoginLog
}

var _ repository.LoginLogRepository = (*LoginLogRepository)(nil)

func NewLoginLogRepository() *LoginLogRepository {
	return &LoginLogRepository{}
}

func cloneLog(e *domain.LoginLog) *domain.LoginLog {
	c := *e
	c.UserID = clonePtr(e.UserID)
	return &c
}

func (r *LoginLogRepository) Create(_ context.Context, entry *domain.LoginLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, cloneLog(entry))
	return nil
}

// newestFirst returns matching entries, most recent first. Ties keep the latest insert first.
func (r *LoginLogRepository) newestFirst(match func(*domain.LoginLog) bool, limit int) []*domain.LoginLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.LoginLog, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if match(r.entries[i]) {
			out = append(out, cloneLog(r.entries[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *LoginLogRepository) ListByUserID(_ context.Context, userID string, limit int) ([]*domain.LoginLog, error) {
	return r.newestFirst(func(e *domain.LoginLog) bool {
		return e.UserID != nil && *e.UserID == userID
	}, limit), nil
}

func (r *LoginLogRepository) ListAll(_ context.Context, limit int) ([]*domain.LoginLog, error) {
	return r.newestFirst(func(*domain.LoginLog) bool { return true }, limit), nil
}

func (r *LoginLogRepository) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	var deleted int64
	for _, e := range r.entries {
		if e.UserID != nil && *e.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}
