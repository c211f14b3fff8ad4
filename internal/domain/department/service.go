package department

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Department codes prefix report codes, so they must stay within the
// alphanumeric alphabet the code format allows.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(d *Department) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	if d.Name == "" {
		return fmt.Errorf("department name is required")
	}
	if d.Code == "" {
		return fmt.Errorf("department code is required")
	}
	if !codePattern.MatchString(d.Code) {
		return fmt.Errorf("department code %q must be alphanumeric", d.Code)
	}
	return nil
}

func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	if err := s.validate(d); err != nil {
		return err
	}
	d.Active = true
	return s.repo.Create(ctx, d)
}

func (s *Service) GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Department, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) UpdateDepartment(ctx context.Context, d *Department) error {
	if err := s.validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListActiveDepartments backs the public report and contest forms.
func (s *Service) ListActiveDepartments(ctx context.Context) ([]*Department, error) {
	return s.repo.ListActive(ctx)
}
