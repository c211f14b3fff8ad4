package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/domain/department"
	"github.com/adrportal/adrportal/internal/platform/db"
)

// Notifier receives report lifecycle events. Implementations must not
// block the request path for long.
type Notifier interface {
	ReportCreated(ctx context.Context, r *ADRReport)
	ReportStatusChanged(ctx context.Context, r *ADRReport)
}

type Service struct {
	repo     Repository
	depts    DepartmentDirectory
	alloc    *Allocator
	pool     *pgxpool.Pool
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, depts DepartmentDirectory, pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		depts:  depts,
		alloc:  NewAllocator(repo, depts),
		pool:   pool,
		logger: logger,
	}
}

// SetNotifier wires the notification fan-out. Optional.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// Allocator exposes the dry-run code preview.
func (s *Service) Allocator() *Allocator { return s.alloc }

func (s *Service) validate(r *ADRReport) error {
	r.Organization = strings.TrimSpace(r.Organization)
	if r.Organization == "" {
		return fmt.Errorf("organization is required")
	}
	if strings.TrimSpace(r.PatientName) == "" {
		return fmt.Errorf("patient name is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("reaction description is required")
	}
	if strings.TrimSpace(r.ReporterName) == "" {
		return fmt.Errorf("reporter name is required")
	}
	if !validSeverities[r.SeverityLevel] {
		return fmt.Errorf("invalid severity level: %s", r.SeverityLevel)
	}
	if r.ReportType == "" {
		r.ReportType = TypeInitial
	}
	if r.ReportType != TypeInitial && r.ReportType != TypeFollowUp {
		return fmt.Errorf("invalid report type: %s", r.ReportType)
	}
	if r.CausalityAssessment != nil && !validCausalities[*r.CausalityAssessment] {
		return fmt.Errorf("invalid causality assessment: %s", *r.CausalityAssessment)
	}
	if len(r.SuspectedDrugs) == 0 {
		return fmt.Errorf("at least one suspected drug is required")
	}
	for i := range r.SuspectedDrugs {
		if strings.TrimSpace(r.SuspectedDrugs[i].DrugName) == "" {
			return fmt.Errorf("suspected drug %d: name is required", i+1)
		}
	}
	return nil
}

// inTx runs fn inside a transaction when a pool is configured. The
// repo's conn(ctx) picks the transaction up from the context.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// CreateReport validates, allocates a report code, and persists the
// report with its drug lists. Code allocation and insert run in one
// transaction under the allocation advisory lock, so two concurrent
// submissions for the same department and year cannot both observe the
// same count.
func (s *Service) CreateReport(ctx context.Context, r *ADRReport) error {
	if err := s.validate(r); err != nil {
		return err
	}

	dept, err := s.depts.GetByName(ctx, r.Organization)
	if errors.Is(err, department.ErrNotFound) {
		return fmt.Errorf("unknown organization %q: %w", r.Organization, ErrDepartmentCodeMissing)
	}
	if err != nil {
		return fmt.Errorf("resolve organization %q: %w", r.Organization, err)
	}

	if r.ReportDate.IsZero() {
		r.ReportDate = time.Now()
	}
	r.ApprovalStatus = ApprovalPending
	year := r.ReportDate.Year()

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockAllocation(ctx, dept.Code, year); err != nil {
			return err
		}
		code, err := s.alloc.allocateFor(ctx, dept, r.ReportDate)
		if err != nil {
			return err
		}
		r.ReportCode = &code
		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.ReportCreated(ctx, r)
	}
	s.logger.Info().Str("report_code", *r.ReportCode).Str("organization", r.Organization).Msg("report created")
	return nil
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*ADRReport, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateReport persists changes to the clinical payload. The report
// code, creator, and approval state are immutable here.
func (s *Service) UpdateReport(ctx context.Context, r *ADRReport) error {
	existing, err := s.repo.GetByID(ctx, r.ID)
	if err != nil {
		return err
	}
	if err := s.validate(r); err != nil {
		return err
	}
	r.ReportCode = existing.ReportCode
	r.CreatedBy = existing.CreatedBy
	r.ApprovalStatus = existing.ApprovalStatus
	r.ApprovedBy = existing.ApprovedBy
	r.ApprovedAt = existing.ApprovedAt

	return s.inTx(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, r)
	})
}

func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, f ListFilter) ([]*ADRReport, int, error) {
	return s.repo.List(ctx, f)
}

// SetApproval moves a report through the approval workflow. Terminal
// states record who approved and when; returning to pending clears
// both.
func (s *Service) SetApproval(ctx context.Context, id uuid.UUID, status string, approverID uuid.UUID) (*ADRReport, error) {
	if !validApprovalStatuses[status] {
		return nil, fmt.Errorf("invalid approval status: %s", status)
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.ApprovalStatus = status
	if status == ApprovalPending {
		r.ApprovedBy = nil
		r.ApprovedAt = nil
	} else {
		now := time.Now()
		r.ApprovedBy = &approverID
		r.ApprovedAt = &now
	}

	if err := s.repo.SetApproval(ctx, r); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ReportStatusChanged(ctx, r)
	}
	return r, nil
}
