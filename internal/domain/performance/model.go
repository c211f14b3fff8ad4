package performance

import (
	"time"

	"github.com/google/uuid"
)

// Assessment statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusFinal     = "final"
)

// Assessment maps to the performance_assessment table.
type Assessment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	AssessmentDate time.Time `db:"assessment_date" json:"assessment_date"`
	TotalScore     int       `db:"total_score" json:"total_score"`
	MaxScore       int       `db:"max_score" json:"max_score"`
	Percentage     float64   `db:"percentage" json:"percentage"`
	Status         string    `db:"status" json:"status"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Answers []Answer `db:"-" json:"answers,omitempty"`
}

// Answer maps to the performance_answer table. One row per indicator
// per assessment, upserted on conflict.
type Answer struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AssessmentID  uuid.UUID `db:"assessment_id" json:"assessment_id"`
	IndicatorCode string    `db:"indicator_code" json:"indicator_code"`
	IndicatorType string    `db:"indicator_type" json:"indicator_type"`
	Category      string    `db:"category" json:"category"`
	Answer        *bool     `db:"answer" json:"answer"`
	Score         int       `db:"score" json:"score"`
	Note          *string   `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryScore is the per-category rollup returned alongside an
// assessment.
type CategoryScore struct {
	Category      string  `json:"category"`
	CategoryName  string  `json:"category_name"`
	TotalScore    int     `json:"total_score"`
	MaxScore      int     `json:"max_score"`
	Percentage    float64 `json:"percentage"`
	AnsweredCount int     `json:"answered_count"`
	TotalCount    int     `json:"total_count"`
}
