package contest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/platform/cache"
)

var (
	ErrContestClosed     = errors.New("contest is not open")
	ErrSubmissionClosed  = errors.New("submission already completed")
	ErrEmptyQuestionPool = errors.New("contest has no questions attached")
)

var validStatuses = map[string]bool{
	StatusDraft:    true,
	StatusActive:   true,
	StatusEnded:    true,
	StatusArchived: true,
}

type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewService(repo Repository, c *cache.Cache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func (s *Service) validate(c *Contest) error {
	if c.Title == "" {
		return fmt.Errorf("contest title is required")
	}
	if c.NumberOfQuestions <= 0 {
		return fmt.Errorf("number_of_questions must be positive")
	}
	if c.TimePerQuestion <= 0 {
		return fmt.Errorf("time_per_question must be positive")
	}
	if !validStatuses[c.Status] {
		return fmt.Errorf("invalid status %q", c.Status)
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return fmt.Errorf("end_date precedes start_date")
	}
	return nil
}

func (s *Service) CreateContest(ctx context.Context, c *Contest) error {
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if err := s.validate(c); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) GetContest(ctx context.Context, id uuid.UUID) (*Contest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateContest(ctx context.Context, c *Contest) error {
	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("contest not found: %w", err)
	}
	c.CreatedBy = existing.CreatedBy
	if err := s.validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) DeleteContest(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListContests(ctx context.Context, status string, limit, offset int) ([]*Contest, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status %q", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

// ActiveContest returns the contest the public landing page should
// show, or nil when none is running. Store failures propagate.
func (s *Service) ActiveContest(ctx context.Context) (*Contest, error) {
	return s.repo.ActivePublic(ctx)
}

func (s *Service) AttachQuestions(ctx context.Context, contestID uuid.UUID, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return fmt.Errorf("no question ids given")
	}
	if _, err := s.repo.GetByID(ctx, contestID); err != nil {
		return fmt.Errorf("contest not found: %w", err)
	}
	return s.repo.AttachQuestions(ctx, contestID, questionIDs)
}

func (s *Service) DetachQuestion(ctx context.Context, contestID, questionID uuid.UUID) error {
	return s.repo.DetachQuestion(ctx, contestID, questionID)
}

// open reports whether the contest accepts registrations and
// submissions right now.
func open(c *Contest, now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}
	return true
}

// Register signs an anonymous entrant up for an open contest.
func (s *Service) Register(ctx context.Context, p *Participant) (*Participant, error) {
	if p.FullName == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if p.DepartmentID == uuid.Nil {
		return nil, fmt.Errorf("department is required")
	}
	if p.Unit == "" {
		return nil, fmt.Errorf("unit is required")
	}

	c, err := s.repo.GetByID(ctx, p.ContestID)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}
	if !open(c, time.Now()) {
		return nil, ErrContestClosed
	}

	if err := s.repo.CreateParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("register participant: %w", err)
	}
	return p, nil
}

// StartSubmission draws the contest's question set and opens a timed
// attempt. Questions come back with answer keys stripped.
func (s *Service) StartSubmission(ctx context.Context, participantID uuid.UUID) (*Submission, error) {
	p, err := s.repo.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("participant not found: %w", err)
	}
	c, err := s.repo.GetByID(ctx, p.ContestID)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}
	if !open(c, time.Now()) {
		return nil, ErrContestClosed
	}

	questions, err := s.repo.PickQuestions(ctx, c.ID, c.NumberOfQuestions)
	if err != nil {
		return nil, fmt.Errorf("pick questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionPool
	}

	sub := &Submission{
		ContestID:      c.ID,
		ParticipantID:  p.ID,
		TotalQuestions: len(questions),
		Status:         SubmissionInProgress,
		StartedAt:      time.Now(),
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		sub.Questions = append(sub.Questions, q.Redacted())
	}
	if err := s.repo.AddSubmissionQuestions(ctx, sub.ID, ids); err != nil {
		return nil, fmt.Errorf("record submission questions: %w", err)
	}
	return sub, nil
}

// SubmitResult is the graded outcome returned to the entrant.
type SubmitResult struct {
	Submission      Submission         `json:"submission"`
	Score           int                `json:"score"`
	TotalQuestions  int                `json:"total_questions"`
	CorrectAnswers  int                `json:"correct_answers"`
	Percentage      int                `json:"percentage"`
	Passed          *bool              `json:"passed,omitempty"`
	DetailedAnswers []SubmissionAnswer `json:"detailed_answers"`
}

// Submit grades a whole attempt at once: one point per correct answer.
// answers maps question id to the selected option key.
func (s *Service) Submit(ctx context.Context, submissionID uuid.UUID, answers map[uuid.UUID]string, timeTaken int) (*SubmitResult, error) {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("submission not found: %w", err)
	}
	if sub.Status != SubmissionInProgress {
		return nil, ErrSubmissionClosed
	}

	questions, err := s.repo.SubmissionQuestions(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("load submission questions: %w", err)
	}

	now := time.Now()
	correct := 0
	detailed := make([]SubmissionAnswer, 0, len(questions))
	for _, q := range questions {
		a := SubmissionAnswer{
			SubmissionID:   sub.ID,
			QuestionID:     q.ID,
			SelectedAnswer: answers[q.ID],
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      answers[q.ID] == q.CorrectAnswer,
			AnsweredAt:     now,
		}
		if a.IsCorrect {
			correct++
		}
		if err := s.repo.CreateAnswer(ctx, &a); err != nil {
			return nil, fmt.Errorf("record answer: %w", err)
		}
		detailed = append(detailed, a)
	}

	sub.Score = correct
	sub.CorrectAnswers = correct
	sub.TimeTaken = timeTaken
	sub.SubmittedAt = &now
	sub.Status = SubmissionCompleted
	if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}

	s.recordRanking(ctx, sub)

	result := &SubmitResult{
		Submission:      *sub,
		Score:           sub.Score,
		TotalQuestions:  sub.TotalQuestions,
		CorrectAnswers:  correct,
		DetailedAnswers: detailed,
	}
	if sub.TotalQuestions > 0 {
		result.Percentage = int(math.Round(float64(correct) / float64(sub.TotalQuestions) * 100))
	}
	if c, err := s.repo.GetByID(ctx, sub.ContestID); err == nil && c.PassingScore != nil {
		passed := sub.Score >= *c.PassingScore
		result.Passed = &passed
	}
	return result, nil
}

func leaderboardBoard(contestID uuid.UUID) string {
	return "contest:leaderboard:" + contestID.String()
}

// rankScore folds score and time into one sortable float: higher score
// always wins, ties go to the faster time.
func rankScore(score, timeTaken int) float64 {
	return float64(score)*1e9 - float64(timeTaken)
}

func (s *Service) recordRanking(ctx context.Context, sub *Submission) {
	err := s.cache.LeaderboardAdd(ctx, leaderboardBoard(sub.ContestID), sub.ID.String(), rankScore(sub.Score, sub.TimeTaken))
	if err != nil {
		s.logger.Warn().Err(err).Str("contest_id", sub.ContestID.String()).Msg("record contest ranking")
	}
}

// Leaderboard ranks completed submissions, reading the Redis sorted
// set when available and falling back to SQL otherwise.
func (s *Service) Leaderboard(ctx context.Context, contestID uuid.UUID, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	top, err := s.cache.LeaderboardTop(ctx, leaderboardBoard(contestID), int64(limit))
	if err == nil && len(top) > 0 {
		entries := make([]LeaderboardEntry, 0, len(top))
		for i, t := range top {
			id, err := uuid.Parse(t.Member)
			if err != nil {
				continue
			}
			e, err := s.repo.LeaderboardEntry(ctx, id)
			if err != nil {
				continue
			}
			e.Rank = i + 1
			entries = append(entries, *e)
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	return s.repo.Leaderboard(ctx, contestID, limit)
}

func (s *Service) Stats(ctx context.Context, contestID uuid.UUID) (*Stats, error) {
	return s.repo.Stats(ctx, contestID)
}
