package performance

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	Update(ctx context.Context, a *Assessment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*Assessment, int, error)

	UpsertAnswer(ctx context.Context, ans *Answer) error
	ListAnswers(ctx context.Context, assessmentID uuid.UUID) ([]Answer, error)
	UpdateScores(ctx context.Context, id uuid.UUID, total, max int, percentage float64) error
}
