package quiz

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, c *Category) error

	CreateQuestion(ctx context.Context, q *Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	// PickQuestions selects up to n active questions at random for a
	// category, optionally filtered by difficulty.
	PickQuestions(ctx context.Context, categoryID uuid.UUID, difficulty string, n int) ([]Question, error)

	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	SessionQuestionIDs(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error)
	AddSessionQuestions(ctx context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID) error

	CreateAnswer(ctx context.Context, a *Answer) error
	HasAnswer(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error)

	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}
