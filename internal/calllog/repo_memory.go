package calllog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]CallLog

	// FailWith, when set, makes every write fail. Used to exercise the
	// store-unavailable path.
	FailWith error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: map[string]CallLog{}}
}

func (r *MemoryRepo) GetByExternalID(ctx context.Context, externalCallID string) (CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return CallLog{}, r.FailWith
	}
	rec, ok := r.records[externalCallID]
	if !ok {
		return CallLog{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, record CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.records[record.ExternalCallID] = record
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, record CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	existing, ok := r.records[record.ExternalCallID]
	if !ok {
		return ErrNotFound
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now().UTC()
	r.records[record.ExternalCallID] = record
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	out := make([]CallLog, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Direction != "" && rec.Direction != filter.Direction {
			continue
		}
		if !filter.From.IsZero() && rec.StartTime != nil && rec.StartTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.StartTime != nil && rec.StartTime.After(filter.To) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].StartTime, out[j].StartTime
		if ti == nil || tj == nil {
			return out[i].ExternalCallID < out[j].ExternalCallID
		}
		return tj.Before(*ti)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Len reports the number of stored records. Test helper.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
