package leads

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("leads: not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (Lead, error)
	GetByPhone(ctx context.Context, phone string) (Lead, error)
	Create(ctx context.Context, lead Lead) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, limit int) ([]Lead, error)
}
