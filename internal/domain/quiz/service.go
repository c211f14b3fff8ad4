package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/platform/cache"
)

const (
	defaultSessionSize  = 10
	leaderboardCacheTTL = time.Minute
)

var (
	ErrSessionClosed        = errors.New("session is not in progress")
	ErrAlreadyAnswered      = errors.New("question already answered in this session")
	ErrQuestionNotInSession = errors.New("question does not belong to this session")
)

var validDifficulties = map[string]bool{
	DifficultyBeginner:     true,
	DifficultyIntermediate: true,
	DifficultyAdvanced:     true,
	DifficultyExpert:       true,
}

type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewService(repo Repository, c *cache.Cache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" || c.CategoryKey == "" {
		return fmt.Errorf("category name and key are required")
	}
	c.Active = true
	return s.repo.CreateCategory(ctx, c)
}

func (s *Service) validateQuestion(q *Question) error {
	if q.QuestionText == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("a question needs at least two options")
	}
	if !validDifficulties[q.Difficulty] {
		return fmt.Errorf("invalid difficulty %q", q.Difficulty)
	}
	found := false
	for _, o := range q.Options {
		if o.Key == q.CorrectAnswer {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("correct answer %q is not among the options", q.CorrectAnswer)
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	return nil
}

func (s *Service) CreateQuestion(ctx context.Context, q *Question) error {
	if err := s.validateQuestion(q); err != nil {
		return err
	}
	q.Active = true
	return s.repo.CreateQuestion(ctx, q)
}

func (s *Service) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	return s.repo.GetQuestion(ctx, id)
}

func (s *Service) UpdateQuestion(ctx context.Context, q *Question) error {
	if _, err := s.repo.GetQuestion(ctx, q.ID); err != nil {
		return fmt.Errorf("question not found: %w", err)
	}
	if err := s.validateQuestion(q); err != nil {
		return err
	}
	return s.repo.UpdateQuestion(ctx, q)
}

func (s *Service) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteQuestion(ctx, id)
}

// StartSession draws a random question set and opens a practice
// session. The returned session carries the questions with answer keys
// stripped.
func (s *Service) StartSession(ctx context.Context, userID, categoryID uuid.UUID, difficulty string, count int) (*Session, error) {
	if difficulty != "" && !validDifficulties[difficulty] {
		return nil, fmt.Errorf("invalid difficulty %q", difficulty)
	}
	if count <= 0 {
		count = defaultSessionSize
	}

	questions, err := s.repo.PickQuestions(ctx, categoryID, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("pick questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions available for this category")
	}

	sess := &Session{
		UserID:         userID,
		CategoryID:     categoryID,
		Difficulty:     difficulty,
		TotalQuestions: len(questions),
		Status:         SessionInProgress,
		StartedAt:      time.Now(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		sess.Questions = append(sess.Questions, q.Redacted())
	}
	if err := s.repo.AddSessionQuestions(ctx, sess.ID, ids); err != nil {
		return nil, fmt.Errorf("record session questions: %w", err)
	}
	return sess, nil
}

// GetSession loads a session with its question set. Answer keys stay
// hidden until the session is completed.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.SessionQuestionIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, qid := range ids {
		q, err := s.repo.GetQuestion(ctx, qid)
		if err != nil {
			return nil, err
		}
		if sess.Status == SessionInProgress {
			sess.Questions = append(sess.Questions, q.Redacted())
		} else {
			sess.Questions = append(sess.Questions, *q)
		}
	}
	return sess, nil
}

// AnswerResult is returned after each submission so the client can show
// immediate feedback.
type AnswerResult struct {
	Answer        Answer  `json:"answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   *string `json:"explanation,omitempty"`
	Session       Session `json:"session"`
}

// SubmitAnswer grades one answer and advances the session counters.
// Each question may be answered once; the session completes
// automatically when the last question is graded.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, questionID uuid.UUID, selected string, skipped bool) (*AnswerResult, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if sess.Status != SessionInProgress {
		return nil, ErrSessionClosed
	}

	ids, err := s.repo.SessionQuestionIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	inSession := false
	for _, id := range ids {
		if id == questionID {
			inSession = true
			break
		}
	}
	if !inSession {
		return nil, ErrQuestionNotInSession
	}

	answered, err := s.repo.HasAnswer(ctx, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	if answered {
		return nil, ErrAlreadyAnswered
	}

	q, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question not found: %w", err)
	}

	ans := &Answer{
		SessionID:      sessionID,
		QuestionID:     questionID,
		SelectedAnswer: selected,
		Skipped:        skipped,
	}
	if !skipped && selected == q.CorrectAnswer {
		ans.IsCorrect = true
		ans.PointsEarned = q.Points
	}
	if err := s.repo.CreateAnswer(ctx, ans); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	sess.QuestionsAnswered++
	if ans.IsCorrect {
		sess.CorrectAnswers++
		sess.TotalScore += ans.PointsEarned
	}
	if sess.QuestionsAnswered >= sess.TotalQuestions {
		s.complete(sess)
	}
	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if sess.Status == SessionCompleted {
		s.invalidateLeaderboard(ctx)
	}

	return &AnswerResult{
		Answer:        *ans,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Session:       *sess,
	}, nil
}

// CompleteSession closes a session early. Unanswered questions earn
// nothing.
func (s *Service) CompleteSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != SessionInProgress {
		return nil, ErrSessionClosed
	}
	s.complete(sess)
	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}
	s.invalidateLeaderboard(ctx)
	return sess, nil
}

func (s *Service) complete(sess *Session) {
	now := time.Now()
	sess.Status = SessionCompleted
	sess.CompletedAt = &now
}

const leaderboardKey = "quiz:leaderboard"

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	key := fmt.Sprintf("%s:%d", leaderboardKey, limit)
	var rows []LeaderboardRow
	if err := s.cache.GetJSON(ctx, key, &rows); err == nil {
		return rows, nil
	}
	rows, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, rows, leaderboardCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("cache quiz leaderboard")
	}
	return rows, nil
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	for _, n := range []int{10, 20, 50, 100} {
		key := fmt.Sprintf("%s:%d", leaderboardKey, n)
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn().Err(err).Msg("invalidate quiz leaderboard")
			return
		}
	}
}
