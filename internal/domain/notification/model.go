// Package notification delivers in-app notifications for report
// lifecycle events, with best-effort email fan-out.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeNewReport     = "new_report"
	TypeReportUpdated = "report_updated"
	TypeSystem        = "system"
)

// Notification maps to the notification table. Data carries
// type-specific context such as the report id and code.
type Notification struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	RecipientID uuid.UUID      `db:"recipient_id" json:"recipient_id"`
	SenderID    *uuid.UUID     `db:"sender_id" json:"sender_id,omitempty"`
	Type        string         `db:"type" json:"type"`
	Title       string         `db:"title" json:"title"`
	Message     string         `db:"message" json:"message"`
	Data        map[string]any `db:"data" json:"data,omitempty"`
	Read        bool           `db:"read" json:"read"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Stats summarizes one recipient's inbox.
type Stats struct {
	Total  int `db:"total" json:"total"`
	Unread int `db:"unread" json:"unread"`
	Read   int `db:"read" json:"read"`
}
