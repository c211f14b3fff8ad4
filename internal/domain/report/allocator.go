package report

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/adrportal/adrportal/internal/domain/department"
)

// CodePattern is the shape of every allocated report code:
// department code, at least three sequence digits, four-digit year.
var CodePattern = regexp.MustCompile(`^[A-Za-z0-9]+-\d{3,}-\d{4}$`)

var (
	// ErrDepartmentCodeMissing means the department exists but has no
	// usable code, or does not exist at all.
	ErrDepartmentCodeMissing = errors.New("department code missing")
)

// DepartmentDirectory is the slice of the department service the
// allocator needs.
type DepartmentDirectory interface {
	GetDepartment(ctx context.Context, id uuid.UUID) (*department.Department, error)
	GetByName(ctx context.Context, name string) (*department.Department, error)
}

// FormatCode renders a report code. Sequences past 999 overflow the
// three-digit padding and simply grow wider; that is accepted.
func FormatCode(departmentCode string, sequence, year int) string {
	return fmt.Sprintf("%s-%03d-%d", departmentCode, sequence, year)
}

// LockKey derives the advisory-lock key for an allocation group. Two
// allocations for the same department and year always contend on the
// same key.
func LockKey(departmentCode string, year int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", departmentCode, year)
	return int64(h.Sum64())
}

// Allocator produces the next report code for a department in a given
// year. Allocate alone is a dry run: it does not reserve the code.
// Reserving allocation happens in Service.CreateReport, which takes the
// allocation lock and inserts the report in one transaction.
type Allocator struct {
	repo  Repository
	depts DepartmentDirectory
}

func NewAllocator(repo Repository, depts DepartmentDirectory) *Allocator {
	return &Allocator{repo: repo, depts: depts}
}

// Allocate resolves the department and returns the code the next
// report submitted for it would receive, as of the given date.
func (a *Allocator) Allocate(ctx context.Context, departmentID uuid.UUID, asOf time.Time) (string, error) {
	dept, err := a.depts.GetDepartment(ctx, departmentID)
	if errors.Is(err, department.ErrNotFound) {
		return "", ErrDepartmentCodeMissing
	}
	if err != nil {
		return "", fmt.Errorf("resolve department %s: %w", departmentID, err)
	}
	return a.allocateFor(ctx, dept, asOf)
}

func (a *Allocator) allocateFor(ctx context.Context, dept *department.Department, asOf time.Time) (string, error) {
	if dept.Code == "" {
		return "", ErrDepartmentCodeMissing
	}
	year := asOf.Year()
	n, err := a.repo.CountByOrgYear(ctx, dept.Name, year)
	if err != nil {
		return "", fmt.Errorf("count reports for %s/%d: %w", dept.Name, year, err)
	}
	return FormatCode(dept.Code, n+1, year), nil
}
