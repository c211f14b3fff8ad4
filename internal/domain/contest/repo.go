package contest

import (
	"context"

	"github.com/google/uuid"

	"github.com/adrportal/adrportal/internal/domain/quiz"
)

type Repository interface {
	Create(ctx context.Context, c *Contest) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contest, error)
	Update(ctx context.Context, c *Contest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit, offset int) ([]*Contest, int, error)
	// ActivePublic returns the newest public contest in active status,
	// or nil when none is running.
	ActivePublic(ctx context.Context) (*Contest, error)

	// Question pool: contests draw from quiz questions attached by an
	// admin.
	AttachQuestions(ctx context.Context, contestID uuid.UUID, questionIDs []uuid.UUID) error
	DetachQuestion(ctx context.Context, contestID, questionID uuid.UUID) error
	PoolSize(ctx context.Context, contestID uuid.UUID) (int, error)
	PickQuestions(ctx context.Context, contestID uuid.UUID, n int) ([]quiz.Question, error)

	CreateParticipant(ctx context.Context, p *Participant) error
	GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error)
	CountParticipants(ctx context.Context, contestID uuid.UUID) (int, error)

	CreateSubmission(ctx context.Context, s *Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*Submission, error)
	UpdateSubmission(ctx context.Context, s *Submission) error
	SubmissionQuestions(ctx context.Context, submissionID uuid.UUID) ([]quiz.Question, error)
	AddSubmissionQuestions(ctx context.Context, submissionID uuid.UUID, questionIDs []uuid.UUID) error
	CreateAnswer(ctx context.Context, a *SubmissionAnswer) error

	Leaderboard(ctx context.Context, contestID uuid.UUID, limit int) ([]LeaderboardEntry, error)
	LeaderboardEntry(ctx context.Context, submissionID uuid.UUID) (*LeaderboardEntry, error)
	Stats(ctx context.Context, contestID uuid.UUID) (*Stats, error)
}
