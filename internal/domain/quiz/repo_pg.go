package quiz

import (
	"context"
	"encoding/json"

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

func (r *repoPG) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, category_key, description, active, created_at FROM quiz_category WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CategoryKey, &c.Description, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

func (r *repoPG) CreateCategory(ctx context.Context, c *Category) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO quiz_category (id, name, category_key, description, active)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.CategoryKey, c.Description, c.Active)
	return err
}

const questionCols = `id, category_id, question_text, difficulty, options, correct_answer, explanation, points, active, created_at`

func scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	var options []byte
	err := row.Scan(&q.ID, &q.CategoryID, &q.QuestionText, &q.Difficulty, &options,
		&q.CorrectAnswer, &q.Explanation, &q.Points, &q.Active, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repoPG) CreateQuestion(ctx context.Context, q *Question) error {
	q.ID = uuid.New()
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO quiz_question (id, category_id, question_text, difficulty, options, correct_answer, explanation, points, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		q.ID, q.CategoryID, q.QuestionText, q.Difficulty, options, q.CorrectAnswer, q.Explanation, q.Points, q.Active)
	return err
}

func (r *repoPG) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	return scanQuestion(r.conn(ctx).QueryRow(ctx, `SELECT `+questionCols+` FROM quiz_question WHERE id = $1`, id))
}

func (r *repoPG) UpdateQuestion(ctx context.Context, q *Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE quiz_question SET question_text=$2, difficulty=$3, options=$4, correct_answer=$5, explanation=$6, points=$7, active=$8
		WHERE id = $1`,
		q.ID, q.QuestionText, q.Difficulty, options, q.CorrectAnswer, q.Explanation, q.Points, q.Active)
	return err
}

func (r *repoPG) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM quiz_question WHERE id = $1`, id)
	return err
}

func (r *repoPG) PickQuestions(ctx context.Context, categoryID uuid.UUID, difficulty string, n int) ([]Question, error) {
	query := `SELECT ` + questionCols + ` FROM quiz_question WHERE category_id = $1 AND active ORDER BY random() LIMIT $2`
	args := []interface{}{categoryID, n}
	if difficulty != "" {
		query = `SELECT ` + questionCols + ` FROM quiz_question WHERE category_id = $1 AND active AND difficulty = $2 ORDER BY random() LIMIT $3`
		args = []interface{}{categoryID, difficulty, n}
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *q)
	}
	return items, rows.Err()
}

func (r *repoPG) CreateSession(ctx context.Context, s *Session) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO quiz_session (id, user_id, category_id, difficulty, total_questions, status, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.UserID, s.CategoryID, s.Difficulty, s.TotalQuestions, s.Status, s.StartedAt)
	return err
}

func (r *repoPG) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var s Session
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, user_id, category_id, difficulty, total_questions, questions_answered,
			correct_answers, total_score, status, started_at, completed_at
		FROM quiz_session WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.CategoryID, &s.Difficulty, &s.TotalQuestions, &s.QuestionsAnswered,
			&s.CorrectAnswers, &s.TotalScore, &s.Status, &s.StartedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) UpdateSession(ctx context.Context, s *Session) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE quiz_session SET questions_answered=$2, correct_answers=$3, total_score=$4, status=$5, completed_at=$6
		WHERE id = $1`,
		s.ID, s.QuestionsAnswered, s.CorrectAnswers, s.TotalScore, s.Status, s.CompletedAt)
	return err
}

func (r *repoPG) SessionQuestionIDs(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT question_id FROM quiz_session_question WHERE session_id = $1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) AddSessionQuestions(ctx context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID) error {
	for i, qid := range questionIDs {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO quiz_session_question (session_id, question_id, position)
			VALUES ($1,$2,$3)`, sessionID, qid, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) CreateAnswer(ctx context.Context, a *Answer) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO quiz_answer (id, session_id, question_id, selected_answer, is_correct, points_earned, skipped)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.SessionID, a.QuestionID, a.SelectedAnswer, a.IsCorrect, a.PointsEarned, a.Skipped)
	return err
}

func (r *repoPG) HasAnswer(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_answer WHERE session_id = $1 AND question_id = $2)`,
		sessionID, questionID).Scan(&exists)
	return exists, err
}

func (r *repoPG) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.user_id, u.full_name, u.organization, SUM(s.total_score) AS total_score, COUNT(*) AS sessions
		FROM quiz_session s
		JOIN app_user u ON u.id = s.user_id
		WHERE s.status = 'completed'
		GROUP BY s.user_id, u.full_name, u.organization
		ORDER BY total_score DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.FullName, &row.Organization, &row.TotalScore, &row.Sessions); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
