package report

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *ADRReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*ADRReport, error)
	Update(ctx context.Context, r *ADRReport) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter) ([]*ADRReport, int, error)

	// Allocation support. CountByOrgYear counts every report for the
	// organization whose created_at falls in the calendar year;
	// CountCodedByOrgYear counts only those that already carry a code.
	CountByOrgYear(ctx context.Context, organization string, year int) (int, error)
	CountCodedByOrgYear(ctx context.Context, organization string, year int) (int, error)

	// LockAllocation takes a transaction-scoped advisory lock for the
	// (department code, year) allocation group. Must be called inside a
	// transaction.
	LockAllocation(ctx context.Context, departmentCode string, year int) error

	// Backfill support.
	ListUncoded(ctx context.Context) ([]*ADRReport, error)
	SetReportCode(ctx context.Context, id uuid.UUID, code string) error

	SetApproval(ctx context.Context, r *ADRReport) error
}
