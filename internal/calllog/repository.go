package calllog

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("calllog: not found")

// ListFilter narrows read queries for dashboard consumers.
type ListFilter struct {
	From      time.Time
	To        time.Time
	Direction string
	Limit     int
}

// Repository is the persistence contract for normalized call logs.
//
// The ingestion pipeline is the sole writer: there is deliberately no Delete.
// Re-ingestion updates existing rows in place, keyed by external_call_id.
type Repository interface {
	GetByExternalID(ctx context.Context, externalCallID string) (CallLog, error)
	Insert(ctx context.Context, record CallLog) error
	Update(ctx context.Context, record CallLog) error
	List(ctx context.Context, filter ListFilter) ([]CallLog, error)
}
