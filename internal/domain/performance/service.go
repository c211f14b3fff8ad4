package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adrportal/adrportal/internal/domain/assessment"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateAssessment(ctx context.Context, a *Assessment) error {
	if a.AssessmentDate.IsZero() {
		a.AssessmentDate = time.Now()
	}
	if a.Status == "" {
		a.Status = StatusDraft
	}
	if a.Status != StatusDraft && a.Status != StatusSubmitted && a.Status != StatusFinal {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	a.MaxScore = CatalogMaxScore()
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateAssessment(ctx context.Context, a *Assessment) error {
	if a.Status != StatusDraft && a.Status != StatusSubmitted && a.Status != StatusFinal {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) DeleteAssessment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAssessments(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.List(ctx, userID, limit, offset)
}

// answerValue maps the tri-state yes/no/unanswered to the scorer's
// answer vocabulary.
func answerValue(answer *bool) string {
	switch {
	case answer == nil:
		return ""
	case *answer:
		return "yes"
	default:
		return "no"
	}
}

// SaveAnswer upserts one indicator answer and recomputes the
// assessment rollup. Scoring is idempotent, so saving the same answer
// twice leaves the totals unchanged.
func (s *Service) SaveAnswer(ctx context.Context, assessmentID uuid.UUID, code string, answer *bool, note *string) (*Answer, error) {
	indicator, ok := IndicatorByCode(code)
	if !ok {
		return nil, fmt.Errorf("unknown indicator code: %s", code)
	}

	ans := &Answer{
		AssessmentID:  assessmentID,
		IndicatorCode: indicator.Code,
		IndicatorType: indicator.Type,
		Category:      indicator.Category,
		Answer:        answer,
		Score:         assessment.ScoreIndicator(indicator.Type, answerValue(answer)),
		Note:          note,
	}
	if err := s.repo.UpsertAnswer(ctx, ans); err != nil {
		return nil, err
	}
	if err := s.recomputeScores(ctx, assessmentID); err != nil {
		return nil, err
	}
	return ans, nil
}

func (s *Service) recomputeScores(ctx context.Context, assessmentID uuid.UUID) error {
	answers, err := s.repo.ListAnswers(ctx, assessmentID)
	if err != nil {
		return err
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	max := CatalogMaxScore()
	percentage := 0.0
	if max > 0 {
		percentage = float64(total) / float64(max) * 100
	}
	return s.repo.UpdateScores(ctx, assessmentID, total, max, percentage)
}

// ScoresByCategory aggregates an assessment's answers into the five
// catalog categories.
func (s *Service) ScoresByCategory(ctx context.Context, assessmentID uuid.UUID) ([]CategoryScore, error) {
	answers, err := s.repo.ListAnswers(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byCode[a.IndicatorCode] = a
	}

	index := make(map[string]*CategoryScore)
	var order []string
	for _, ind := range Indicators {
		cs, ok := index[ind.Category]
		if !ok {
			cs = &CategoryScore{Category: ind.Category, CategoryName: ind.CategoryName}
			index[ind.Category] = cs
			order = append(order, ind.Category)
		}
		cs.TotalCount++
		cs.MaxScore += MaxScore(ind.Type)
		if a, answered := byCode[ind.Code]; answered && a.Answer != nil {
			cs.AnsweredCount++
			cs.TotalScore += a.Score
		}
	}

	result := make([]CategoryScore, 0, len(order))
	for _, cat := range order {
		cs := index[cat]
		if cs.MaxScore > 0 {
			cs.Percentage = float64(cs.TotalScore) / float64(cs.MaxScore) * 100
		}
		result = append(result, *cs)
	}
	return result, nil
}
