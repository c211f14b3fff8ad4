package allergycard

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *AllergyCard) error
	GetByID(ctx context.Context, id uuid.UUID) (*AllergyCard, error)
	GetByCode(ctx context.Context, code string) (*AllergyCard, error)
	Update(ctx context.Context, c *AllergyCard) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, organization, search string, limit, offset int) ([]*AllergyCard, int, error)

	// CountByYear counts cards issued in a calendar year; the next
	// card in that year takes sequence count+1.
	CountByYear(ctx context.Context, year int) (int, error)
	LockAllocation(ctx context.Context, year int) error
}
