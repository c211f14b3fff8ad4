package contest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adrportal/adrportal/internal/domain/quiz"
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

const contestCols = `id, title, description, rules, prizes, logo_url, number_of_questions,
	time_per_question, passing_score, start_date, end_date, status, is_public,
	created_by, created_at, updated_at`

func scanContest(row pgx.Row) (*Contest, error) {
	var c Contest
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Rules, &c.Prizes, &c.LogoURL,
		&c.NumberOfQuestions, &c.TimePerQuestion, &c.PassingScore, &c.StartDate, &c.EndDate,
		&c.Status, &c.IsPublic, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Contest) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO contest (id, title, description, rules, prizes, logo_url, number_of_questions,
			time_per_question, passing_score, start_date, end_date, status, is_public, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.Title, c.Description, c.Rules, c.Prizes, c.LogoURL, c.NumberOfQuestions,
		c.TimePerQuestion, c.PassingScore, c.StartDate, c.EndDate, c.Status, c.IsPublic, c.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Contest, error) {
	return scanContest(r.conn(ctx).QueryRow(ctx, `SELECT `+contestCols+` FROM contest WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Contest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE contest SET title=$2, description=$3, rules=$4, prizes=$5, logo_url=$6,
			number_of_questions=$7, time_per_question=$8, passing_score=$9,
			start_date=$10, end_date=$11, status=$12, is_public=$13, updated_at=now()
		WHERE id = $1`,
		c.ID, c.Title, c.Description, c.Rules, c.Prizes, c.LogoURL,
		c.NumberOfQuestions, c.TimePerQuestion, c.PassingScore,
		c.StartDate, c.EndDate, c.Status, c.IsPublic)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM contest WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*Contest, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM contest`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contestCols + ` FROM contest` + where + ` ORDER BY created_at DESC`
	if status != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Contest
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ActivePublic(ctx context.Context) (*Contest, error) {
	c, err := scanContest(r.conn(ctx).QueryRow(ctx, `
		SELECT `+contestCols+` FROM contest
		WHERE status = 'active' AND is_public
		ORDER BY created_at DESC
		LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *repoPG) AttachQuestions(ctx context.Context, contestID uuid.UUID, questionIDs []uuid.UUID) error {
	for _, qid := range questionIDs {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO contest_question (contest_id, question_id)
			VALUES ($1,$2)
			ON CONFLICT (contest_id, question_id) DO NOTHING`, contestID, qid); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) DetachQuestion(ctx context.Context, contestID, questionID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM contest_question WHERE contest_id = $1 AND question_id = $2`, contestID, questionID)
	return err
}

func (r *repoPG) PoolSize(ctx context.Context, contestID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM contest_question WHERE contest_id = $1`, contestID).Scan(&n)
	return n, err
}

const questionCols = `q.id, q.category_id, q.question_text, q.difficulty, q.options,
	q.correct_answer, q.explanation, q.points, q.active, q.created_at`

func scanQuizQuestion(row pgx.Row) (*quiz.Question, error) {
	var q quiz.Question
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

func (r *repoPG) PickQuestions(ctx context.Context, contestID uuid.UUID, n int) ([]quiz.Question, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+questionCols+`
		FROM contest_question cq
		JOIN quiz_question q ON q.id = cq.question_id
		WHERE cq.contest_id = $1 AND q.active
		ORDER BY random()
		LIMIT $2`, contestID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows pgx.Rows) ([]quiz.Question, error) {
	var items []quiz.Question
	for rows.Next() {
		q, err := scanQuizQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *q)
	}
	return items, rows.Err()
}

func (r *repoPG) CreateParticipant(ctx context.Context, p *Participant) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO contest_participant (id, contest_id, full_name, email, phone, department_id, unit, ip_address, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.ContestID, p.FullName, p.Email, p.Phone, p.DepartmentID, p.Unit, p.IPAddress, p.UserAgent)
	return err
}

func (r *repoPG) GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error) {
	var p Participant
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, contest_id, full_name, email, phone, department_id, unit, ip_address, user_agent, created_at
		FROM contest_participant WHERE id = $1`, id).
		Scan(&p.ID, &p.ContestID, &p.FullName, &p.Email, &p.Phone, &p.DepartmentID, &p.Unit,
			&p.IPAddress, &p.UserAgent, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) CountParticipants(ctx context.Context, contestID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM contest_participant WHERE contest_id = $1`, contestID).Scan(&n)
	return n, err
}

func (r *repoPG) CreateSubmission(ctx context.Context, s *Submission) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO contest_submission (id, contest_id, participant_id, total_questions, status, started_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.ContestID, s.ParticipantID, s.TotalQuestions, s.Status, s.StartedAt)
	return err
}

func (r *repoPG) GetSubmission(ctx context.Context, id uuid.UUID) (*Submission, error) {
	var s Submission
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, contest_id, participant_id, score, total_questions, correct_answers,
			started_at, submitted_at, time_taken, status, created_at
		FROM contest_submission WHERE id = $1`, id).
		Scan(&s.ID, &s.ContestID, &s.ParticipantID, &s.Score, &s.TotalQuestions, &s.CorrectAnswers,
			&s.StartedAt, &s.SubmittedAt, &s.TimeTaken, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) UpdateSubmission(ctx context.Context, s *Submission) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE contest_submission SET score=$2, correct_answers=$3, submitted_at=$4, time_taken=$5, status=$6
		WHERE id = $1`,
		s.ID, s.Score, s.CorrectAnswers, s.SubmittedAt, s.TimeTaken, s.Status)
	return err
}

func (r *repoPG) SubmissionQuestions(ctx context.Context, submissionID uuid.UUID) ([]quiz.Question, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+questionCols+`
		FROM contest_submission_question sq
		JOIN quiz_question q ON q.id = sq.question_id
		WHERE sq.submission_id = $1
		ORDER BY sq.position`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (r *repoPG) AddSubmissionQuestions(ctx context.Context, submissionID uuid.UUID, questionIDs []uuid.UUID) error {
	for i, qid := range questionIDs {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO contest_submission_question (submission_id, question_id, position)
			VALUES ($1,$2,$3)`, submissionID, qid, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) CreateAnswer(ctx context.Context, a *SubmissionAnswer) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO contest_answer (id, submission_id, question_id, selected_answer, correct_answer, is_correct, answered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.SubmissionID, a.QuestionID, a.SelectedAnswer, a.CorrectAnswer, a.IsCorrect, a.AnsweredAt)
	return err
}

func scanLeaderboardEntry(row pgx.Row) (*LeaderboardEntry, error) {
	var e LeaderboardEntry
	err := row.Scan(&e.SubmissionID, &e.ContestID, &e.FullName, &e.DepartmentName, &e.Unit,
		&e.Score, &e.TotalQuestions, &e.CorrectAnswers, &e.TimeTaken, &e.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Leaderboard(ctx context.Context, contestID uuid.UUID, limit int) ([]LeaderboardEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.id, s.contest_id, p.full_name, coalesce(d.name, ''), p.unit,
			s.score, s.total_questions, s.correct_answers, s.time_taken, s.submitted_at
		FROM contest_submission s
		JOIN contest_participant p ON p.id = s.participant_id
		LEFT JOIN department d ON d.id = p.department_id
		WHERE s.contest_id = $1 AND s.status = 'completed'
		ORDER BY s.score DESC, s.time_taken ASC
		LIMIT $2`, contestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LeaderboardEntry
	for rows.Next() {
		e, err := scanLeaderboardEntry(rows)
		if err != nil {
			return nil, err
		}
		e.Rank = len(items) + 1
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *repoPG) LeaderboardEntry(ctx context.Context, submissionID uuid.UUID) (*LeaderboardEntry, error) {
	return scanLeaderboardEntry(r.conn(ctx).QueryRow(ctx, `
		SELECT s.id, s.contest_id, p.full_name, coalesce(d.name, ''), p.unit,
			s.score, s.total_questions, s.correct_answers, s.time_taken, s.submitted_at
		FROM contest_submission s
		JOIN contest_participant p ON p.id = s.participant_id
		LEFT JOIN department d ON d.id = p.department_id
		WHERE s.id = $1 AND s.status = 'completed'`, submissionID))
}

func (r *repoPG) Stats(ctx context.Context, contestID uuid.UUID) (*Stats, error) {
	var st Stats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM contest_participant WHERE contest_id = $1),
			count(*) FILTER (WHERE status = 'completed'),
			coalesce(avg(score) FILTER (WHERE status = 'completed'), 0),
			CASE WHEN count(*) = 0 THEN 0
				ELSE count(*) FILTER (WHERE status = 'completed')::float / count(*) END
		FROM contest_submission WHERE contest_id = $1`, contestID).
		Scan(&st.TotalParticipants, &st.TotalSubmissions, &st.AverageScore, &st.CompletionRate)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
