package department

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no department matches the lookup.
var ErrNotFound = errors.New("department not found")

type Repository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Department, int, error)
	ListActive(ctx context.Context) ([]*Department, error)
}
