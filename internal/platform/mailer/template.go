package mailer

import (
	"fmt"
	"strings"
	"sync"
)

// Template is a reusable message with {{placeholder}} substitution.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine stores templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{templates: make(map[string]Template)}
}

func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = t
}

// Render substitutes {{key}} placeholders in the template's subject and
// body with values from data.
func (e *TemplateEngine) Render(id string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[id]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not registered", id)
	}

	subject, body = t.Subject, t.Body
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		subject = strings.ReplaceAll(subject, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return subject, body, nil
}

// Built-in template ids.
const (
	TplReportApproved = "report-approved"
	TplReportRejected = "report-rejected"
	TplWelcome        = "welcome"
)

// DefaultTemplates returns an engine preloaded with the portal's
// standard messages.
func DefaultTemplates() *TemplateEngine {
	e := NewTemplateEngine()
	e.Register(Template{
		ID:      TplReportApproved,
		Subject: "Báo cáo ADR {{code}} đã được duyệt",
		Body:    "Báo cáo {{code}} của bạn đã được {{approver}} phê duyệt.",
	})
	e.Register(Template{
		ID:      TplReportRejected,
		Subject: "Báo cáo ADR {{code}} bị từ chối",
		Body:    "Báo cáo {{code}} của bạn đã bị từ chối. Vui lòng kiểm tra lại nội dung.",
	})
	e.Register(Template{
		ID:      TplWelcome,
		Subject: "Chào mừng đến với hệ thống báo cáo ADR",
		Body:    "Xin chào {{name}}, tài khoản của bạn đã được tạo.",
	})
	return e
}
