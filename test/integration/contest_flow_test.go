package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/domain/contest"
)

func newContestService() *contest.Service {
	return contest.NewService(contest.NewRepoPG(globalPool), nil, zerolog.Nop())
}

func TestContestFullFlow(t *testing.T) {
	ctx := context.Background()
	svc := newContestService()
	quizSvc := newQuizService()
	dept := createTestDepartment(t, ctx, "Khoa Dược", "KD")
	_, questionIDs := seedQuizBank(t, ctx, quizSvc, 4)

	now := time.Now()
	c := &contest.Contest{
		Title:             "Cuộc thi kiến thức ADR",
		NumberOfQuestions: 3,
		TimePerQuestion:   30,
		StartDate:         ptrTime(now.Add(-time.Hour)),
		EndDate:           ptrTime(now.Add(time.Hour)),
		Status:            contest.StatusActive,
		IsPublic:          true,
	}
	if err := svc.CreateContest(ctx, c); err != nil {
		t.Fatalf("create contest: %v", err)
	}
	if err := svc.AttachQuestions(ctx, c.ID, questionIDs); err != nil {
		t.Fatalf("attach questions: %v", err)
	}

	p, err := svc.Register(ctx, &contest.Participant{
		ContestID:    c.ID,
		FullName:     "Hoàng Văn E",
		DepartmentID: dept.ID,
		Unit:         "Tổ Dược lâm sàng",
	})
	if err != nil {
		t.Fatalf("register participant: %v", err)
	}

	sub, err := svc.StartSubmission(ctx, p.ID)
	if err != nil {
		t.Fatalf("start submission: %v", err)
	}
	if len(sub.Questions) != 3 {
		t.Fatalf("expected 3 drawn questions, got %d", len(sub.Questions))
	}
	for _, q := range sub.Questions {
		if q.CorrectAnswer != "" {
			t.Error("drawn question leaked correct answer")
		}
	}

	answers := make(map[uuid.UUID]string)
	for i, q := range sub.Questions {
		if i == 0 {
			answers[q.ID] = "B" // one wrong on purpose
		} else {
			answers[q.ID] = "A"
		}
	}
	result, err := svc.Submit(ctx, sub.ID, answers, 42)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CorrectAnswers != 2 {
		t.Errorf("expected 2 correct, got %d", result.CorrectAnswers)
	}
	if result.Percentage != 67 {
		t.Errorf("expected 67%%, got %d", result.Percentage)
	}

	// Double submission is rejected.
	if _, err := svc.Submit(ctx, sub.ID, answers, 42); err == nil {
		t.Error("expected error on double submission")
	}

	board, err := svc.Leaderboard(ctx, c.ID, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 {
		t.Fatalf("expected 1 leaderboard entry, got %d", len(board))
	}
	if board[0].FullName != "Hoàng Văn E" || board[0].Score != 2 {
		t.Errorf("unexpected entry: %+v", board[0])
	}

	stats, err := svc.Stats(ctx, c.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalParticipants != 1 || stats.TotalSubmissions != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestContestRegistrationWindow(t *testing.T) {
	ctx := context.Background()
	svc := newContestService()
	dept := createTestDepartment(t, ctx, "Khoa Ngoại", "KN")

	now := time.Now()
	ended := &contest.Contest{
		Title:             "Cuộc thi đã kết thúc",
		NumberOfQuestions: 1,
		TimePerQuestion:   30,
		StartDate:         ptrTime(now.Add(-2 * time.Hour)),
		EndDate:           ptrTime(now.Add(-time.Hour)),
		Status:            contest.StatusActive,
	}
	if err := svc.CreateContest(ctx, ended); err != nil {
		t.Fatalf("create contest: %v", err)
	}

	_, err := svc.Register(ctx, &contest.Participant{
		ContestID:    ended.ID,
		FullName:     "Trễ Giờ",
		DepartmentID: dept.ID,
		Unit:         "Tổ 1",
	})
	if err == nil {
		t.Fatal("expected registration rejected after end date")
	}
}

func TestContestServesEditedQuestion(t *testing.T) {
	// Contests draw from the shared question bank, so edits made after
	// attachment must show up in new submissions.
	ctx := context.Background()
	svc := newContestService()
	quizSvc := newQuizService()
	dept := createTestDepartment(t, ctx, "Khoa Xét Nghiệm", "XN")
	_, questionIDs := seedQuizBank(t, ctx, quizSvc, 1)

	q, err := quizSvc.GetQuestion(ctx, questionIDs[0])
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	q.QuestionText = "Câu hỏi đã chỉnh sửa?"
	if err := quizSvc.UpdateQuestion(ctx, q); err != nil {
		t.Fatalf("update question: %v", err)
	}

	now := time.Now()
	c := &contest.Contest{
		Title:             "Cuộc thi một câu",
		NumberOfQuestions: 1,
		TimePerQuestion:   30,
		StartDate:         ptrTime(now.Add(-time.Hour)),
		EndDate:           ptrTime(now.Add(time.Hour)),
		Status:            contest.StatusActive,
	}
	if err := svc.CreateContest(ctx, c); err != nil {
		t.Fatalf("create contest: %v", err)
	}
	if err := svc.AttachQuestions(ctx, c.ID, questionIDs); err != nil {
		t.Fatalf("attach questions: %v", err)
	}

	p, err := svc.Register(ctx, &contest.Participant{
		ContestID:    c.ID,
		FullName:     "Người Chơi",
		DepartmentID: dept.ID,
		Unit:         "Tổ 2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	sub, err := svc.StartSubmission(ctx, p.ID)
	if err != nil {
		t.Fatalf("start submission: %v", err)
	}
	if sub.Questions[0].QuestionText != "Câu hỏi đã chỉnh sửa?" {
		t.Errorf("expected edited question text, got %q", sub.Questions[0].QuestionText)
	}
}
