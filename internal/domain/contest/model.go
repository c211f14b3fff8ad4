// Package contest implements public ADR knowledge contests: admin-run
// events with their own question pools, anonymous registration, timed
// submissions, and a ranked leaderboard.
package contest

import (
	"time"

	"github.com/google/uuid"

	"github.com/adrportal/adrportal/internal/domain/quiz"
)

// Contest statuses.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusEnded    = "ended"
	StatusArchived = "archived"
)

// Submission statuses.
const (
	SubmissionInProgress = "in_progress"
	SubmissionCompleted  = "completed"
	SubmissionAbandoned  = "abandoned"
)

// Contest maps to the contest table.
type Contest struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Rules       *string   `db:"rules" json:"rules,omitempty"`
	Prizes      *string   `db:"prizes" json:"prizes,omitempty"`
	LogoURL     *string   `db:"logo_url" json:"logo_url,omitempty"`

	NumberOfQuestions int  `db:"number_of_questions" json:"number_of_questions"`
	TimePerQuestion   int  `db:"time_per_question" json:"time_per_question"`
	PassingScore      *int `db:"passing_score" json:"passing_score,omitempty"`

	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`

	Status   string `db:"status" json:"status"`
	IsPublic bool   `db:"is_public" json:"is_public"`

	CreatedBy *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Participant maps to the contest_participant table. Contest entrants
// register without an account, so the row carries their identity.
type Participant struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ContestID    uuid.UUID `db:"contest_id" json:"contest_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	Unit         string    `db:"unit" json:"unit"`
	IPAddress    string    `db:"ip_address" json:"-"`
	UserAgent    string    `db:"user_agent" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Submission maps to the contest_submission table. Scoring is one
// point per correct answer.
type Submission struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ContestID     uuid.UUID `db:"contest_id" json:"contest_id"`
	ParticipantID uuid.UUID `db:"participant_id" json:"participant_id"`

	Score          int `db:"score" json:"score"`
	TotalQuestions int `db:"total_questions" json:"total_questions"`
	CorrectAnswers int `db:"correct_answers" json:"correct_answers"`

	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	TimeTaken   int        `db:"time_taken" json:"time_taken"`

	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Questions []quiz.Question `db:"-" json:"questions,omitempty"`
}

// SubmissionAnswer maps to the contest_answer table.
type SubmissionAnswer struct {
	ID             uuid.UUID `db:"id" json:"id"`
	SubmissionID   uuid.UUID `db:"submission_id" json:"submission_id"`
	QuestionID     uuid.UUID `db:"question_id" json:"question_id"`
	SelectedAnswer string    `db:"selected_answer" json:"selected_answer"`
	CorrectAnswer  string    `db:"correct_answer" json:"correct_answer"`
	IsCorrect      bool      `db:"is_correct" json:"is_correct"`
	AnsweredAt     time.Time `db:"answered_at" json:"answered_at"`
}

// LeaderboardEntry is one ranked completed submission. Ties on score
// break toward the faster time.
type LeaderboardEntry struct {
	SubmissionID   uuid.UUID `db:"submission_id" json:"submission_id"`
	ContestID      uuid.UUID `db:"contest_id" json:"contest_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	DepartmentName string    `db:"department_name" json:"department_name"`
	Unit           string    `db:"unit" json:"unit"`
	Score          int       `db:"score" json:"score"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	CorrectAnswers int       `db:"correct_answers" json:"correct_answers"`
	TimeTaken      int       `db:"time_taken" json:"time_taken"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
	Rank           int       `db:"-" json:"rank"`
}

// Stats summarizes one contest for the admin view.
type Stats struct {
	TotalParticipants int     `json:"total_participants"`
	TotalSubmissions  int     `json:"total_submissions"`
	AverageScore      float64 `json:"average_score"`
	CompletionRate    float64 `json:"completion_rate"`
}
