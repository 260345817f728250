package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-process repository for tests and local development.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Lead
	byPhone map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Lead),
		byPhone: make(map[string]string),
	}
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.byID[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return lead, nil
}

func (r *MemoryRepo) GetByPhone(ctx context.Context, phone string) (Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPhone[phone]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) Create(ctx context.Context, lead Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	r.byID[lead.ID] = lead
	if lead.PhoneNumber != "" {
		r.byPhone[lead.PhoneNumber] = lead.ID
	}
	return nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	lead.Status = status
	lead.UpdatedAt = time.Now().UTC()
	r.byID[id] = lead
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, limit int) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Lead, 0, len(r.byID))
	for _, lead := range r.byID {
		out = append(out, lead)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
