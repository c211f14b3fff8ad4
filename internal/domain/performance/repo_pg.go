package performance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adrportal/adrportal/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const assessmentCols = `id, user_id, assessment_date, total_score, max_score, percentage, status, notes, created_at, updated_at`

func (r *repoPG) scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	err := row.Scan(&a.ID, &a.UserID, &a.AssessmentDate, &a.TotalScore, &a.MaxScore,
		&a.Percentage, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Assessment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO performance_assessment (id, user_id, assessment_date, total_score, max_score, percentage, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.UserID, a.AssessmentDate, a.TotalScore, a.MaxScore, a.Percentage, a.Status, a.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	a, err := r.scanAssessment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM performance_assessment WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	a.Answers, err = r.ListAnswers(ctx, a.ID)
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Assessment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE performance_assessment SET assessment_date=$2, status=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.AssessmentDate, a.Status, a.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM performance_assessment WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, userID *uuid.UUID, limit, offset int) ([]*Assessment, int, error) {
	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if userID != nil {
		err = r.conn(ctx).QueryRow(ctx,
			`SELECT COUNT(*) FROM performance_assessment WHERE user_id = $1`, *userID).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+assessmentCols+` FROM performance_assessment WHERE user_id = $1 ORDER BY assessment_date DESC LIMIT $2 OFFSET $3`,
			*userID, limit, offset)
	} else {
		err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM performance_assessment`).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+assessmentCols+` FROM performance_assessment ORDER BY assessment_date DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assessment
	for rows.Next() {
		a, err := r.scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpsertAnswer(ctx context.Context, ans *Answer) error {
	if ans.ID == uuid.Nil {
		ans.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO performance_answer (id, assessment_id, indicator_code, indicator_type, category, answer, score, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (assessment_id, indicator_code)
		DO UPDATE SET answer = EXCLUDED.answer, score = EXCLUDED.score, note = EXCLUDED.note, updated_at = NOW()`,
		ans.ID, ans.AssessmentID, ans.IndicatorCode, ans.IndicatorType, ans.Category, ans.Answer, ans.Score, ans.Note)
	return err
}

func (r *repoPG) ListAnswers(ctx context.Context, assessmentID uuid.UUID) ([]Answer, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, assessment_id, indicator_code, indicator_type, category, answer, score, note, created_at, updated_at
		FROM performance_answer WHERE assessment_id = $1 ORDER BY indicator_code`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.AssessmentID, &a.IndicatorCode, &a.IndicatorType, &a.Category,
			&a.Answer, &a.Score, &a.Note, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *repoPG) UpdateScores(ctx context.Context, id uuid.UUID, total, max int, percentage float64) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE performance_assessment SET total_score=$2, max_score=$3, percentage=$4, updated_at=NOW()
		WHERE id = $1`, id, total, max, percentage)
	return err
}
