package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/domain/identity"
	"github.com/adrportal/adrportal/internal/domain/report"
	"github.com/adrportal/adrportal/internal/platform/mailer"
)

// UserDirectory resolves recipients. Satisfied by identity.Service.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	UsersByRole(ctx context.Context, role string) ([]*identity.User, error)
}

// Service fans report lifecycle events out to in-app notifications and
// email. It implements report.Notifier; delivery is best-effort and
// never fails the triggering request.
type Service struct {
	repo      Repository
	users     UserDirectory
	sender    mailer.EmailSender
	templates *mailer.TemplateEngine
	logger    zerolog.Logger
}

func NewService(repo Repository, users UserDirectory, sender mailer.EmailSender, templates *mailer.TemplateEngine, logger zerolog.Logger) *Service {
	if sender == nil {
		sender = mailer.NewNopSender(logger)
	}
	if templates == nil {
		templates = mailer.DefaultTemplates()
	}
	return &Service{repo: repo, users: users, sender: sender, templates: templates, logger: logger}
}

func reportData(r *report.ADRReport) map[string]any {
	data := map[string]any{
		"report_id":      r.ID.String(),
		"patient_name":   r.PatientName,
		"organization":   r.Organization,
		"severity_level": r.SeverityLevel,
	}
	if r.ReportCode != nil {
		data["report_code"] = *r.ReportCode
	}
	return data
}

func code(r *report.ADRReport) string {
	if r.ReportCode != nil {
		return *r.ReportCode
	}
	return r.ID.String()
}

// ReportCreated notifies every admin that a new report is awaiting
// review.
func (s *Service) ReportCreated(ctx context.Context, r *report.ADRReport) {
	admins, err := s.users.UsersByRole(ctx, identity.RoleAdmin)
	if err != nil {
		s.logger.Error().Err(err).Msg("list admins for new report notification")
		return
	}

	sender := r.CreatedBy
	for _, admin := range admins {
		n := &Notification{
			RecipientID: admin.ID,
			SenderID:    &sender,
			Type:        TypeNewReport,
			Title:       "Báo cáo ADR mới",
			Message:     fmt.Sprintf("Báo cáo %s từ %s đang chờ duyệt", code(r), r.Organization),
			Data:        reportData(r),
		}
		if err := s.repo.Create(ctx, n); err != nil {
			s.logger.Error().Err(err).Str("recipient", admin.ID.String()).Msg("create notification")
		}
	}
}

// ReportStatusChanged notifies the reporter of an approval decision.
func (s *Service) ReportStatusChanged(ctx context.Context, r *report.ADRReport) {
	u, err := s.users.GetUser(ctx, r.CreatedBy)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", r.CreatedBy.String()).Msg("resolve reporter for status notification")
		return
	}

	var title, tpl string
	switch r.ApprovalStatus {
	case report.ApprovalApproved:
		title = "Báo cáo đã được duyệt"
		tpl = mailer.TplReportApproved
	case report.ApprovalRejected:
		title = "Báo cáo bị từ chối"
		tpl = mailer.TplReportRejected
	default:
		title = "Báo cáo được cập nhật"
	}

	n := &Notification{
		RecipientID: u.ID,
		SenderID:    r.ApprovedBy,
		Type:        TypeReportUpdated,
		Title:       title,
		Message:     fmt.Sprintf("Báo cáo %s: %s", code(r), r.ApprovalStatus),
		Data:        reportData(r),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).Msg("create status notification")
	}

	if tpl != "" {
		s.email(ctx, u.Email, tpl, map[string]string{"code": code(r)})
	}
}

// Announce creates a system notification for one user.
func (s *Service) Announce(ctx context.Context, recipientID uuid.UUID, title, message string) error {
	if title == "" || message == "" {
		return fmt.Errorf("title and message are required")
	}
	return s.repo.Create(ctx, &Notification{
		RecipientID: recipientID,
		Type:        TypeSystem,
		Title:       title,
		Message:     message,
	})
}

func (s *Service) email(ctx context.Context, to, tpl string, data map[string]string) {
	subject, body, err := s.templates.Render(tpl, data)
	if err != nil {
		s.logger.Error().Err(err).Str("template", tpl).Msg("render email")
		return
	}
	if err := s.sender.SendEmail(ctx, to, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("to", to).Msg("send email")
	}
}

func (s *Service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *Service) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	return s.repo.Delete(ctx, id, recipientID)
}

func (s *Service) Stats(ctx context.Context, recipientID uuid.UUID) (*Stats, error) {
	return s.repo.Stats(ctx, recipientID)
}
