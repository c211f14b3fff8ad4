package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/domain/identity"
	"github.com/adrportal/adrportal/internal/domain/report"
)

type mockRepo struct {
	items map[uuid.UUID]*Notification
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	n.ID = uuid.New()
	cp := *n
	m.items[n.ID] = &cp
	return nil
}

func (m *mockRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	var items []*Notification
	for _, n := range m.items {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		items = append(items, n)
	}
	return items, len(items), nil
}

func (m *mockRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID) error {
	n, ok := m.items[id]
	if !ok || n.RecipientID != recipientID {
		return fmt.Errorf("not found")
	}
	n.Read = true
	return nil
}

func (m *mockRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID) error {
	for _, n := range m.items {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id, recipientID uuid.UUID) error {
	if n, ok := m.items[id]; ok && n.RecipientID == recipientID {
		delete(m.items, id)
	}
	return nil
}

func (m *mockRepo) Stats(_ context.Context, recipientID uuid.UUID) (*Stats, error) {
	st := &Stats{}
	for _, n := range m.items {
		if n.RecipientID != recipientID {
			continue
		}
		st.Total++
		if n.Read {
			st.Read++
		} else {
			st.Unread++
		}
	}
	return st, nil
}

type mockUsers struct {
	users map[uuid.UUID]*identity.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: make(map[uuid.UUID]*identity.User)}
}

func (m *mockUsers) add(role string) *identity.User {
	u := &identity.User{
		ID:     uuid.New(),
		Email:  fmt.Sprintf("%s@benhvien.vn", uuid.NewString()[:8]),
		Role:   role,
		Active: true,
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUsers) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUsers) UsersByRole(_ context.Context, role string) ([]*identity.User, error) {
	var items []*identity.User
	for _, u := range m.users {
		if u.Role == role {
			items = append(items, u)
		}
	}
	return items, nil
}

type captureSender struct {
	sent []string
}

func (c *captureSender) SendEmail(_ context.Context, to, subject, _ string) error {
	c.sent = append(c.sent, to+": "+subject)
	return nil
}

func testReport(createdBy uuid.UUID) *report.ADRReport {
	code := "KD-001-2025"
	return &report.ADRReport{
		ID:             uuid.New(),
		ReportCode:     &code,
		Organization:   "Khoa Dược",
		PatientName:    "Nguyen Van A",
		SeverityLevel:  report.SeverityHospitalization,
		ApprovalStatus: report.ApprovalPending,
		CreatedBy:      createdBy,
	}
}

func TestReportCreated_NotifiesAdmins(t *testing.T) {
	repo := newMockRepo()
	users := newMockUsers()
	admin1 := users.add(identity.RoleAdmin)
	admin2 := users.add(identity.RoleAdmin)
	reporter := users.add(identity.RoleUser)

	svc := NewService(repo, users, nil, nil, zerolog.Nop())
	svc.ReportCreated(context.Background(), testReport(reporter.ID))

	for _, admin := range []*identity.User{admin1, admin2} {
		items, _, err := svc.List(context.Background(), admin.ID, false, 10, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected one notification for admin, got %d", len(items))
		}
		if items[0].Type != TypeNewReport {
			t.Errorf("expected new_report type, got %s", items[0].Type)
		}
		if items[0].Data["report_code"] != "KD-001-2025" {
			t.Errorf("expected report code in data, got %v", items[0].Data)
		}
	}

	// The reporter is not an admin and hears nothing.
	items, _, _ := svc.List(context.Background(), reporter.ID, false, 10, 0)
	if len(items) != 0 {
		t.Errorf("expected no notification for reporter, got %d", len(items))
	}
}

func TestReportStatusChanged_NotifiesReporterAndEmails(t *testing.T) {
	repo := newMockRepo()
	users := newMockUsers()
	reporter := users.add(identity.RoleUser)
	sender := &captureSender{}

	svc := NewService(repo, users, sender, nil, zerolog.Nop())

	r := testReport(reporter.ID)
	r.ApprovalStatus = report.ApprovalApproved
	svc.ReportStatusChanged(context.Background(), r)

	items, _, err := svc.List(context.Background(), reporter.ID, false, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one notification, got %d", len(items))
	}
	if items[0].Type != TypeReportUpdated {
		t.Errorf("expected report_updated, got %s", items[0].Type)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
}

func TestReportStatusChanged_UnknownReporter(t *testing.T) {
	repo := newMockRepo()
	users := newMockUsers()
	svc := NewService(repo, users, nil, nil, zerolog.Nop())

	// Must not panic or create anything.
	svc.ReportStatusChanged(context.Background(), testReport(uuid.New()))
	if len(repo.items) != 0 {
		t.Errorf("expected no notifications for unknown reporter")
	}
}

func TestInboxOperations(t *testing.T) {
	repo := newMockRepo()
	users := newMockUsers()
	svc := NewService(repo, users, nil, nil, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := svc.Announce(ctx, userID, "Thông báo", fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("announce: %v", err)
		}
	}

	st, _ := svc.Stats(ctx, userID)
	if st.Total != 3 || st.Unread != 3 {
		t.Errorf("unexpected stats: %+v", st)
	}

	items, _, _ := svc.List(ctx, userID, true, 10, 0)
	if len(items) != 3 {
		t.Fatalf("expected 3 unread, got %d", len(items))
	}

	if err := svc.MarkRead(ctx, items[0].ID, userID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	st, _ = svc.Stats(ctx, userID)
	if st.Unread != 2 || st.Read != 1 {
		t.Errorf("unexpected stats after mark read: %+v", st)
	}

	// Another user cannot mark someone else's notification.
	if err := svc.MarkRead(ctx, items[1].ID, uuid.New()); err == nil {
		t.Error("expected error marking another user's notification")
	}

	if err := svc.MarkAllRead(ctx, userID); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	st, _ = svc.Stats(ctx, userID)
	if st.Unread != 0 || st.Read != 3 {
		t.Errorf("unexpected stats after mark all: %+v", st)
	}

	if err := svc.Announce(ctx, userID, "", ""); err == nil {
		t.Error("expected error for empty announcement")
	}
}
