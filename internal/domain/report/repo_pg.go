package report

import (
	"context"
	"fmt"

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

const reportCols = `id, report_code, organization, report_type, report_date,
	patient_name, patient_birth_date, patient_gender, patient_weight_kg, patient_ethnicity, medical_history,
	onset_date, description, treatment, severity_level, outcome,
	causality_assessment, assessment_scale, causality_comment,
	reporter_name, reporter_profession, reporter_phone, reporter_email,
	approval_status, approved_by, approved_at,
	created_by, created_at, updated_at`

func (r *repoPG) scanRow(row pgx.Row) (*ADRReport, error) {
	var rep ADRReport
	err := row.Scan(&rep.ID, &rep.ReportCode, &rep.Organization, &rep.ReportType, &rep.ReportDate,
		&rep.PatientName, &rep.PatientBirthDate, &rep.PatientGender, &rep.PatientWeightKg, &rep.PatientEthnicity, &rep.MedicalHistory,
		&rep.OnsetDate, &rep.Description, &rep.Treatment, &rep.SeverityLevel, &rep.Outcome,
		&rep.CausalityAssessment, &rep.AssessmentScale, &rep.CausalityComment,
		&rep.ReporterName, &rep.ReporterProfession, &rep.ReporterPhone, &rep.ReporterEmail,
		&rep.ApprovalStatus, &rep.ApprovedBy, &rep.ApprovedAt,
		&rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt)
	return &rep, err
}

func (r *repoPG) Create(ctx context.Context, rep *ADRReport) error {
	rep.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO adr_report (id, report_code, organization, report_type, report_date,
			patient_name, patient_birth_date, patient_gender, patient_weight_kg, patient_ethnicity, medical_history,
			onset_date, description, treatment, severity_level, outcome,
			causality_assessment, assessment_scale, causality_comment,
			reporter_name, reporter_profession, reporter_phone, reporter_email,
			approval_status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		rep.ID, rep.ReportCode, rep.Organization, rep.ReportType, rep.ReportDate,
		rep.PatientName, rep.PatientBirthDate, rep.PatientGender, rep.PatientWeightKg, rep.PatientEthnicity, rep.MedicalHistory,
		rep.OnsetDate, rep.Description, rep.Treatment, rep.SeverityLevel, rep.Outcome,
		rep.CausalityAssessment, rep.AssessmentScale, rep.CausalityComment,
		rep.ReporterName, rep.ReporterProfession, rep.ReporterPhone, rep.ReporterEmail,
		rep.ApprovalStatus, rep.CreatedBy)
	if err != nil {
		return err
	}
	return r.replaceDrugs(ctx, rep)
}

func (r *repoPG) replaceDrugs(ctx context.Context, rep *ADRReport) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM suspected_drug WHERE report_id = $1`, rep.ID); err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, `DELETE FROM concurrent_drug WHERE report_id = $1`, rep.ID); err != nil {
		return err
	}
	for i := range rep.SuspectedDrugs {
		d := &rep.SuspectedDrugs[i]
		d.ID = uuid.New()
		d.ReportID = rep.ID
		if _, err := conn.Exec(ctx, `
			INSERT INTO suspected_drug (id, report_id, drug_name, dosage_form, dose, route, indication,
				start_date, end_date, reaction_improved_after_stopping, reaction_reoccurred_after_rechallenge)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			d.ID, d.ReportID, d.DrugName, d.DosageForm, d.Dose, d.Route, d.Indication,
			d.StartDate, d.EndDate, d.ReactionImprovedAfterStopping, d.ReactionReoccurredAfterRechallenge); err != nil {
			return err
		}
	}
	for i := range rep.ConcurrentDrugs {
		d := &rep.ConcurrentDrugs[i]
		d.ID = uuid.New()
		d.ReportID = rep.ID
		if _, err := conn.Exec(ctx, `
			INSERT INTO concurrent_drug (id, report_id, drug_name, dose, route, start_date, end_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			d.ID, d.ReportID, d.DrugName, d.Dose, d.Route, d.StartDate, d.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// collectSuspectedDrugs drains the cursor and surfaces any iteration
// error, so a connection dropped mid-stream is not mistaken for the end
// of the result set.
func collectSuspectedDrugs(rows pgx.Rows) ([]SuspectedDrug, error) {
	defer rows.Close()
	var items []SuspectedDrug
	for rows.Next() {
		var d SuspectedDrug
		if err := rows.Scan(&d.ID, &d.ReportID, &d.DrugName, &d.DosageForm, &d.Dose, &d.Route, &d.Indication,
			&d.StartDate, &d.EndDate, &d.ReactionImprovedAfterStopping, &d.ReactionReoccurredAfterRechallenge); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func collectConcurrentDrugs(rows pgx.Rows) ([]ConcurrentDrug, error) {
	defer rows.Close()
	var items []ConcurrentDrug
	for rows.Next() {
		var d ConcurrentDrug
		if err := rows.Scan(&d.ID, &d.ReportID, &d.DrugName, &d.Dose, &d.Route, &d.StartDate, &d.EndDate); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) loadDrugs(ctx context.Context, rep *ADRReport) error {
	conn := r.conn(ctx)
	rows, err := conn.Query(ctx, `
		SELECT id, report_id, drug_name, dosage_form, dose, route, indication,
			start_date, end_date, reaction_improved_after_stopping, reaction_reoccurred_after_rechallenge
		FROM suspected_drug WHERE report_id = $1 ORDER BY drug_name`, rep.ID)
	if err != nil {
		return err
	}
	suspected, err := collectSuspectedDrugs(rows)
	if err != nil {
		return err
	}
	rep.SuspectedDrugs = suspected

	rows, err = conn.Query(ctx, `
		SELECT id, report_id, drug_name, dose, route, start_date, end_date
		FROM concurrent_drug WHERE report_id = $1 ORDER BY drug_name`, rep.ID)
	if err != nil {
		return err
	}
	concurrent, err := collectConcurrentDrugs(rows)
	if err != nil {
		return err
	}
	rep.ConcurrentDrugs = concurrent
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ADRReport, error) {
	rep, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+reportCols+` FROM adr_report WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadDrugs(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *repoPG) Update(ctx context.Context, rep *ADRReport) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE adr_report SET organization=$2, report_type=$3, report_date=$4,
			patient_name=$5, patient_birth_date=$6, patient_gender=$7, patient_weight_kg=$8,
			patient_ethnicity=$9, medical_history=$10,
			onset_date=$11, description=$12, treatment=$13, severity_level=$14, outcome=$15,
			causality_assessment=$16, assessment_scale=$17, causality_comment=$18,
			reporter_name=$19, reporter_profession=$20, reporter_phone=$21, reporter_email=$22,
			updated_at=NOW()
		WHERE id = $1`,
		rep.ID, rep.Organization, rep.ReportType, rep.ReportDate,
		rep.PatientName, rep.PatientBirthDate, rep.PatientGender, rep.PatientWeightKg,
		rep.PatientEthnicity, rep.MedicalHistory,
		rep.OnsetDate, rep.Description, rep.Treatment, rep.SeverityLevel, rep.Outcome,
		rep.CausalityAssessment, rep.AssessmentScale, rep.CausalityComment,
		rep.ReporterName, rep.ReporterProfession, rep.ReporterPhone, rep.ReporterEmail)
	if err != nil {
		return err
	}
	return r.replaceDrugs(ctx, rep)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM adr_report WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f ListFilter) ([]*ADRReport, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Organization != "" {
		where += ` AND organization = ` + arg(f.Organization)
	}
	if f.SeverityLevel != "" {
		where += ` AND severity_level = ` + arg(f.SeverityLevel)
	}
	if f.ApprovalStatus != "" {
		where += ` AND approval_status = ` + arg(f.ApprovalStatus)
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where += ` AND (report_code ILIKE ` + p + ` OR patient_name ILIKE ` + p + ` OR description ILIKE ` + p + `)`
	}
	if f.From != nil {
		where += ` AND created_at >= ` + arg(*f.From)
	}
	if f.To != nil {
		where += ` AND created_at <= ` + arg(*f.To)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM adr_report`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + reportCols + ` FROM adr_report` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ADRReport
	for rows.Next() {
		rep, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountByOrgYear(ctx context.Context, organization string, year int) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM adr_report
		WHERE organization = $1 AND created_at >= make_date($2, 1, 1) AND created_at < make_date($2 + 1, 1, 1)`,
		organization, year).Scan(&n)
	return n, err
}

func (r *repoPG) CountCodedByOrgYear(ctx context.Context, organization string, year int) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM adr_report
		WHERE organization = $1 AND report_code IS NOT NULL
		AND created_at >= make_date($2, 1, 1) AND created_at < make_date($2 + 1, 1, 1)`,
		organization, year).Scan(&n)
	return n, err
}

func (r *repoPG) LockAllocation(ctx context.Context, departmentCode string, year int) error {
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, LockKey(departmentCode, year))
	return err
}

func (r *repoPG) ListUncoded(ctx context.Context) ([]*ADRReport, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM adr_report WHERE report_code IS NULL ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ADRReport
	for rows.Next() {
		rep, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rep)
	}
	return items, rows.Err()
}

func (r *repoPG) SetReportCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE adr_report SET report_code=$2, updated_at=NOW() WHERE id = $1`, id, code)
	return err
}

func (r *repoPG) SetApproval(ctx context.Context, rep *ADRReport) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE adr_report SET approval_status=$2, approved_by=$3, approved_at=$4, updated_at=NOW()
		WHERE id = $1`,
		rep.ID, rep.ApprovalStatus, rep.ApprovedBy, rep.ApprovedAt)
	return err
}
