package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adrportal/adrportal/internal/platform/auth"
)

type mockRepo struct {
	items map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.items {
		if existing.Email == u.Email {
			return fmt.Errorf("email already registered")
		}
	}
	u.ID = uuid.New()
	m.items[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.items {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.items[u.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.items[u.ID] = u
	return nil
}

func (m *mockRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.items[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockRepo) TouchLogin(_ context.Context, id uuid.UUID) error {
	u, ok := m.items[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range m.items {
		items = append(items, u)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByRole(_ context.Context, role string) ([]*User, error) {
	var items []*User
	for _, u := range m.items {
		if u.Role == role && u.Active {
			items = append(items, u)
		}
	}
	return items, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	issuer := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	return NewService(repo, issuer), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &Registration{
		Email:        "Alice@Example.com",
		Password:     "s3cret-password",
		FullName:     "Alice Nguyen",
		Organization: "Bệnh viện A",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("expected email lowercased, got %s", u.Email)
	}
	if u.Role != RoleUser {
		t.Errorf("expected default role user, got %s", u.Role)
	}

	resp, err := svc.Login(ctx, &Credentials{Email: "alice@example.com", Password: "s3cret-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token in response")
	}
	if resp.User.LastLoginAt == nil {
		t.Error("expected last_login_at recorded")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &Registration{
		Email: "bob@example.com", Password: "s3cret-password", FullName: "Bob",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, &Credentials{Email: "bob@example.com", Password: "wrong-password"})
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &Registration{
		Email: "carol@example.com", Password: "s3cret-password", FullName: "Carol",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	repo.items[u.ID].Active = false

	_, err = svc.Login(ctx, &Credentials{Email: "carol@example.com", Password: "s3cret-password"})
	if err != ErrAccountDisabled {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &Registration{Email: "not-an-email", Password: "s3cret-password", FullName: "X"}); err == nil {
		t.Error("expected error for invalid email")
	}
	if _, err := svc.Register(ctx, &Registration{Email: "d@example.com", Password: "short", FullName: "X"}); err == nil {
		t.Error("expected error for short password")
	}
	if _, err := svc.Register(ctx, &Registration{Email: "d@example.com", Password: "s3cret-password", FullName: "  "}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &Registration{
		Email: "dave@example.com", Password: "old-password1", FullName: "Dave",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "new-password1"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "old-password1", "new-password1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, &Credentials{Email: "dave@example.com", Password: "new-password1"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &Registration{
		Email: "eve@example.com", Password: "s3cret-password", FullName: "Eve",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u.Role = "superuser"
	if err := svc.UpdateUser(ctx, u); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestCreateUser_AdminRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, &Registration{
		Email: "frank@example.com", Password: "s3cret-password", FullName: "Frank",
	}, RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Role != RoleAdmin {
		t.Errorf("expected admin role, got %s", u.Role)
	}

	if _, err := svc.CreateUser(ctx, &Registration{
		Email: "grace@example.com", Password: "s3cret-password", FullName: "Grace",
	}, "superuser"); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &Registration{
		Email: "heidi@example.com", Password: "old-password1", FullName: "Heidi",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ResetPassword(ctx, u.ID, "new-password1"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := svc.Login(ctx, &Credentials{Email: "heidi@example.com", Password: "new-password1"}); err != nil {
		t.Errorf("login with reset password: %v", err)
	}

	if err := svc.ResetPassword(ctx, uuid.New(), "whatever1"); err == nil {
		t.Error("expected error for unknown user")
	}
}
