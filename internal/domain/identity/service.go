package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/adrportal/adrportal/internal/platform/auth"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrAccountDisabled    = fmt.Errorf("account is disabled")
)

type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
}

func NewService(repo Repository, issuer *auth.TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

func (s *Service) Register(ctx context.Context, reg *Registration) (*User, error) {
	return s.createUser(ctx, reg, RoleUser)
}

// CreateUser is the admin path; unlike Register it may assign any role.
func (s *Service) CreateUser(ctx context.Context, reg *Registration, role string) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	return s.createUser(ctx, reg, role)
}

func (s *Service) createUser(ctx context.Context, reg *Registration, role string) (*User, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}
	if strings.TrimSpace(reg.FullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        reg.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(reg.FullName),
		Role:         role,
		Organization: strings.TrimSpace(reg.Organization),
		Phone:        reg.Phone,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, creds *Credentials) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrAccountDisabled
	}

	token, err := s.issuer.Issue(u.ID.String(), u.Role, u.FullName, u.Organization)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	_ = s.repo.TouchLogin(ctx, u.ID)
	return &TokenResponse{Token: token, User: u}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// ResetPassword sets a new password without checking the old one.
// Admin-only; the handler enforces that.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, next string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UsersByRole returns active accounts holding the given role.
func (s *Service) UsersByRole(ctx context.Context, role string) ([]*User, error) {
	return s.repo.ListByRole(ctx, role)
}
