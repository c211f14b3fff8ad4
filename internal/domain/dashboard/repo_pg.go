package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adrportal/adrportal/internal/domain/report"
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

// Aggregates take the organization as a parameter; an empty string
// matches every department.

func (r *repoPG) CountAll(ctx context.Context, organization string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM adr_report WHERE ($1 = '' OR organization = $1)`, organization).Scan(&n)
	return n, err
}

func (r *repoPG) CountBetween(ctx context.Context, organization string, from, to time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*) FROM adr_report
		WHERE ($1 = '' OR organization = $1) AND created_at >= $2 AND created_at < $3`,
		organization, from, to).Scan(&n)
	return n, err
}

func (r *repoPG) CountCritical(ctx context.Context, organization string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*) FROM adr_report
		WHERE ($1 = '' OR organization = $1) AND severity_level IN ('death', 'life_threatening')`,
		organization).Scan(&n)
	return n, err
}

func (r *repoPG) CountPending(ctx context.Context, organization string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*) FROM adr_report
		WHERE ($1 = '' OR organization = $1) AND approval_status = 'pending'`,
		organization).Scan(&n)
	return n, err
}

func (r *repoPG) Recent(ctx context.Context, organization string, limit int) ([]*report.ADRReport, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, report_code, organization, patient_name, severity_level, approval_status, created_at
		FROM adr_report
		WHERE ($1 = '' OR organization = $1)
		ORDER BY created_at DESC
		LIMIT $2`, organization, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*report.ADRReport
	for rows.Next() {
		var rep report.ADRReport
		if err := rows.Scan(&rep.ID, &rep.ReportCode, &rep.Organization, &rep.PatientName,
			&rep.SeverityLevel, &rep.ApprovalStatus, &rep.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &rep)
	}
	return items, rows.Err()
}

func (r *repoPG) ReportsPerMonth(ctx context.Context, f Filter) ([]MonthCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, count(*)
		FROM adr_report
		WHERE ($1 = '' OR organization = $1)
			AND created_at >= make_date($2, 1, 1) AND created_at < make_date($2 + 1, 1, 1)
		GROUP BY month
		ORDER BY month`, f.Organization, f.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthCount
	for rows.Next() {
		var m MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *repoPG) labelCounts(ctx context.Context, query string, args ...interface{}) ([]LabelCount, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		items = append(items, lc)
	}
	return items, rows.Err()
}

func (r *repoPG) SeverityDistribution(ctx context.Context, f Filter) ([]LabelCount, error) {
	return r.labelCounts(ctx, `
		SELECT severity_level, count(*)
		FROM adr_report
		WHERE ($1 = '' OR organization = $1)
			AND created_at >= make_date($2, 1, 1) AND created_at < make_date($2 + 1, 1, 1)
		GROUP BY severity_level
		ORDER BY count(*) DESC`, f.Organization, f.Year)
}

func (r *repoPG) TopOrganizations(ctx context.Context, year, limit int) ([]LabelCount, error) {
	return r.labelCounts(ctx, `
		SELECT organization, count(*)
		FROM adr_report
		WHERE created_at >= make_date($1, 1, 1) AND created_at < make_date($1 + 1, 1, 1)
		GROUP BY organization
		ORDER BY count(*) DESC
		LIMIT $2`, year, limit)
}

func (r *repoPG) CausalityDistribution(ctx context.Context, f Filter) ([]LabelCount, error) {
	return r.labelCounts(ctx, `
		SELECT causality_assessment, count(*)
		FROM adr_report
		WHERE ($1 = '' OR organization = $1)
			AND created_at >= make_date($2, 1, 1) AND created_at < make_date($2 + 1, 1, 1)
			AND causality_assessment IS NOT NULL AND causality_assessment <> ''
		GROUP BY causality_assessment
		ORDER BY count(*) DESC`, f.Organization, f.Year)
}
