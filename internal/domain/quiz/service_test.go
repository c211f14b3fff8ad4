package quiz

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	categories       map[uuid.UUID]*Category
	questions        map[uuid.UUID]*Question
	sessions         map[uuid.UUID]*Session
	sessionQuestions map[uuid.UUID][]uuid.UUID
	answers          map[uuid.UUID][]*Answer
	users            map[uuid.UUID]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		categories:       make(map[uuid.UUID]*Category),
		questions:        make(map[uuid.UUID]*Question),
		sessions:         make(map[uuid.UUID]*Session),
		sessionQuestions: make(map[uuid.UUID][]uuid.UUID),
		answers:          make(map[uuid.UUID][]*Answer),
		users:            make(map[uuid.UUID]string),
	}
}

func (m *mockRepo) ListCategories(_ context.Context) ([]*Category, error) {
	var items []*Category
	for _, c := range m.categories {
		items = append(items, c)
	}
	return items, nil
}

func (m *mockRepo) CreateCategory(_ context.Context, c *Category) error {
	c.ID = uuid.New()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockRepo) CreateQuestion(_ context.Context, q *Question) error {
	q.ID = uuid.New()
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *mockRepo) GetQuestion(_ context.Context, id uuid.UUID) (*Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepo) UpdateQuestion(_ context.Context, q *Question) error {
	if _, ok := m.questions[q.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	delete(m.questions, id)
	return nil
}

func (m *mockRepo) PickQuestions(_ context.Context, categoryID uuid.UUID, difficulty string, n int) ([]Question, error) {
	var items []Question
	for _, q := range m.questions {
		if q.CategoryID != categoryID || !q.Active {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		items = append(items, *q)
		if len(items) == n {
			break
		}
	}
	return items, nil
}

func (m *mockRepo) CreateSession(_ context.Context, s *Session) error {
	s.ID = uuid.New()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetSession(_ context.Context, id uuid.UUID) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	cp.Questions = nil
	return &cp, nil
}

func (m *mockRepo) UpdateSession(_ context.Context, s *Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *s
	cp.Questions = nil
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockRepo) SessionQuestionIDs(_ context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	return m.sessionQuestions[sessionID], nil
}

func (m *mockRepo) AddSessionQuestions(_ context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID) error {
	m.sessionQuestions[sessionID] = append(m.sessionQuestions[sessionID], questionIDs...)
	return nil
}

func (m *mockRepo) CreateAnswer(_ context.Context, a *Answer) error {
	a.ID = uuid.New()
	cp := *a
	m.answers[a.SessionID] = append(m.answers[a.SessionID], &cp)
	return nil
}

func (m *mockRepo) HasAnswer(_ context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	for _, a := range m.answers[sessionID] {
		if a.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Leaderboard(_ context.Context, limit int) ([]LeaderboardRow, error) {
	totals := make(map[uuid.UUID]*LeaderboardRow)
	for _, s := range m.sessions {
		if s.Status != SessionCompleted {
			continue
		}
		row, ok := totals[s.UserID]
		if !ok {
			row = &LeaderboardRow{UserID: s.UserID, FullName: m.users[s.UserID]}
			totals[s.UserID] = row
		}
		row.TotalScore += s.TotalScore
		row.Sessions++
	}
	var rows []LeaderboardRow
	for _, r := range totals {
		rows = append(rows, *r)
	}
	return rows, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, nil, zerolog.Nop()), repo
}

func seedQuestions(repo *mockRepo, categoryID uuid.UUID, n int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		q := &Question{
			CategoryID:    categoryID,
			QuestionText:  fmt.Sprintf("question %d", i+1),
			Difficulty:    DifficultyBeginner,
			Options:       []Option{{Key: "A", Text: "first"}, {Key: "B", Text: "second"}},
			CorrectAnswer: "A",
			Points:        2,
			Active:        true,
		}
		_ = repo.CreateQuestion(context.Background(), q)
		ids = append(ids, q.ID)
	}
	return ids
}

func TestCreateQuestion_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	catID := uuid.New()

	q := &Question{
		CategoryID:    catID,
		QuestionText:  "what is an ADR?",
		Difficulty:    DifficultyBeginner,
		Options:       []Option{{Key: "A", Text: "a"}, {Key: "B", Text: "b"}},
		CorrectAnswer: "A",
	}
	if err := svc.CreateQuestion(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Points != 1 {
		t.Errorf("expected default points 1, got %d", q.Points)
	}

	bad := &Question{CategoryID: catID, QuestionText: "x", Difficulty: DifficultyBeginner,
		Options: []Option{{Key: "A", Text: "a"}, {Key: "B", Text: "b"}}, CorrectAnswer: "C"}
	if err := svc.CreateQuestion(ctx, bad); err == nil {
		t.Error("expected error when correct answer is not an option")
	}

	bad = &Question{CategoryID: catID, QuestionText: "x", Difficulty: "hardcore",
		Options: []Option{{Key: "A", Text: "a"}, {Key: "B", Text: "b"}}, CorrectAnswer: "A"}
	if err := svc.CreateQuestion(ctx, bad); err == nil {
		t.Error("expected error for invalid difficulty")
	}

	bad = &Question{CategoryID: catID, QuestionText: "x", Difficulty: DifficultyBeginner,
		Options: []Option{{Key: "A", Text: "a"}}, CorrectAnswer: "A"}
	if err := svc.CreateQuestion(ctx, bad); err == nil {
		t.Error("expected error for single option")
	}
}

func TestStartSession_RedactsAnswers(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	catID := uuid.New()
	seedQuestions(repo, catID, 5)

	sess, err := svc.StartSession(ctx, uuid.New(), catID, DifficultyBeginner, 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.TotalQuestions != 3 {
		t.Errorf("expected 3 questions, got %d", sess.TotalQuestions)
	}
	if sess.Status != SessionInProgress {
		t.Errorf("expected in_progress, got %s", sess.Status)
	}
	for _, q := range sess.Questions {
		if q.CorrectAnswer != "" {
			t.Error("correct answer leaked into an active session")
		}
		if q.Explanation != nil {
			t.Error("explanation leaked into an active session")
		}
	}
}

func TestStartSession_NoQuestions(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.StartSession(context.Background(), uuid.New(), uuid.New(), "", 5); err == nil {
		t.Error("expected error when no questions exist")
	}
}

func TestSubmitAnswer_Scoring(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	catID := uuid.New()
	seedQuestions(repo, catID, 3)

	sess, err := svc.StartSession(ctx, uuid.New(), catID, "", 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	qids, _ := repo.SessionQuestionIDs(ctx, sess.ID)

	res, err := svc.SubmitAnswer(ctx, sess.ID, qids[0], "A", false)
	if err != nil {
		t.Fatalf("submit correct: %v", err)
	}
	if !res.Answer.IsCorrect || res.Answer.PointsEarned != 2 {
		t.Errorf("expected correct answer worth 2, got %+v", res.Answer)
	}
	if res.CorrectAnswer != "A" {
		t.Errorf("expected feedback to reveal correct answer")
	}

	res, err = svc.SubmitAnswer(ctx, sess.ID, qids[1], "B", false)
	if err != nil {
		t.Fatalf("submit wrong: %v", err)
	}
	if res.Answer.IsCorrect || res.Answer.PointsEarned != 0 {
		t.Errorf("expected wrong answer worth 0, got %+v", res.Answer)
	}

	res, err = svc.SubmitAnswer(ctx, sess.ID, qids[2], "", true)
	if err != nil {
		t.Fatalf("submit skipped: %v", err)
	}
	if res.Answer.PointsEarned != 0 {
		t.Errorf("expected skipped answer worth 0")
	}

	// Third answer finished the session.
	if res.Session.Status != SessionCompleted {
		t.Errorf("expected session completed, got %s", res.Session.Status)
	}
	if res.Session.TotalScore != 2 || res.Session.CorrectAnswers != 1 {
		t.Errorf("unexpected totals: %+v", res.Session)
	}
}

func TestSubmitAnswer_Guards(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	catID := uuid.New()
	seedQuestions(repo, catID, 2)

	sess, err := svc.StartSession(ctx, uuid.New(), catID, "", 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	qids, _ := repo.SessionQuestionIDs(ctx, sess.ID)

	if _, err := svc.SubmitAnswer(ctx, sess.ID, uuid.New(), "A", false); err != ErrQuestionNotInSession {
		t.Errorf("expected ErrQuestionNotInSession, got %v", err)
	}

	if _, err := svc.SubmitAnswer(ctx, sess.ID, qids[0], "A", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, sess.ID, qids[0], "B", false); err != ErrAlreadyAnswered {
		t.Errorf("expected ErrAlreadyAnswered, got %v", err)
	}

	if _, err := svc.CompleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, sess.ID, qids[1], "A", false); err != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestCompleteSession_EarlyExit(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	catID := uuid.New()
	seedQuestions(repo, catID, 3)

	sess, err := svc.StartSession(ctx, uuid.New(), catID, "", 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	qids, _ := repo.SessionQuestionIDs(ctx, sess.ID)
	if _, err := svc.SubmitAnswer(ctx, sess.ID, qids[0], "A", false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	done, err := svc.CompleteSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != SessionCompleted || done.CompletedAt == nil {
		t.Errorf("expected completed session with timestamp")
	}
	if done.TotalScore != 2 {
		t.Errorf("expected score 2 from the one answered question, got %d", done.TotalScore)
	}

	if _, err := svc.CompleteSession(ctx, sess.ID); err != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed on double complete, got %v", err)
	}
}

func TestLeaderboard_AggregatesCompletedSessions(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	catID := uuid.New()
	seedQuestions(repo, catID, 2)

	alice := uuid.New()
	for i := 0; i < 2; i++ {
		sess, err := svc.StartSession(ctx, alice, catID, "", 2)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		qids, _ := repo.SessionQuestionIDs(ctx, sess.ID)
		for _, qid := range qids {
			if _, err := svc.SubmitAnswer(ctx, sess.ID, qid, "A", false); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
	}

	// An abandoned session must not count.
	bob := uuid.New()
	stale := &Session{UserID: bob, CategoryID: catID, TotalQuestions: 2,
		Status: SessionInProgress, StartedAt: time.Now(), TotalScore: 99}
	_ = repo.CreateSession(ctx, stale)

	rows, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one ranked user, got %d", len(rows))
	}
	if rows[0].UserID != alice || rows[0].TotalScore != 8 || rows[0].Sessions != 2 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}
