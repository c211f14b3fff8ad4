// Package quiz implements the ADR knowledge quiz: question bank,
// practice sessions, per-answer scoring, and the leaderboard.
package quiz

import (
	"time"

	"github.com/google/uuid"
)

// Question difficulties.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// Session statuses.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// Category groups questions by topic.
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CategoryKey string    `db:"category_key" json:"category_key"`
	Description *string   `db:"description" json:"description,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Option is one answer choice, keyed A/B/C/D.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question maps to the quiz_question table. Options live in a JSONB
// column.
type Question struct {
	ID            uuid.UUID `db:"id" json:"id"`
	CategoryID    uuid.UUID `db:"category_id" json:"category_id"`
	QuestionText  string    `db:"question_text" json:"question_text"`
	Difficulty    string    `db:"difficulty" json:"difficulty"`
	Options       []Option  `db:"options" json:"options"`
	CorrectAnswer string    `db:"correct_answer" json:"correct_answer,omitempty"`
	Explanation   *string   `db:"explanation" json:"explanation,omitempty"`
	Points        int       `db:"points" json:"points"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Redacted strips the answer key before a question is shown inside an
// active session.
func (q Question) Redacted() Question {
	q.CorrectAnswer = ""
	q.Explanation = nil
	return q
}

// Session maps to the quiz_session table.
type Session struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	UserID            uuid.UUID  `db:"user_id" json:"user_id"`
	CategoryID        uuid.UUID  `db:"category_id" json:"category_id"`
	Difficulty        string     `db:"difficulty" json:"difficulty"`
	TotalQuestions    int        `db:"total_questions" json:"total_questions"`
	QuestionsAnswered int        `db:"questions_answered" json:"questions_answered"`
	CorrectAnswers    int        `db:"correct_answers" json:"correct_answers"`
	TotalScore        int        `db:"total_score" json:"total_score"`
	Status            string     `db:"status" json:"status"`
	StartedAt         time.Time  `db:"started_at" json:"started_at"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	Questions []Question `db:"-" json:"questions,omitempty"`
}

// Answer maps to the quiz_answer table.
type Answer struct {
	ID             uuid.UUID `db:"id" json:"id"`
	SessionID      uuid.UUID `db:"session_id" json:"session_id"`
	QuestionID     uuid.UUID `db:"question_id" json:"question_id"`
	SelectedAnswer string    `db:"selected_answer" json:"selected_answer"`
	IsCorrect      bool      `db:"is_correct" json:"is_correct"`
	PointsEarned   int       `db:"points_earned" json:"points_earned"`
	Skipped        bool      `db:"skipped" json:"skipped"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardRow aggregates a user's completed sessions.
type LeaderboardRow struct {
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Organization string    `db:"organization" json:"organization"`
	TotalScore   int       `db:"total_score" json:"total_score"`
	Sessions     int       `db:"sessions" json:"sessions"`
}
