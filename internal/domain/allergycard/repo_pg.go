package allergycard

import (
	"context"
	"fmt"
	"hash/fnv"

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

const cardCols = `id, card_code, report_id, patient_name, patient_gender, patient_age, patient_id_number,
	hospital_name, department, doctor_name, doctor_phone,
	issued_date, issued_by_user_id, organization,
	status, expiry_date, notes, created_at, updated_at`

func (r *repoPG) scanRow(row pgx.Row) (*AllergyCard, error) {
	var c AllergyCard
	err := row.Scan(&c.ID, &c.CardCode, &c.ReportID, &c.PatientName, &c.PatientGender, &c.PatientAge, &c.PatientIDNumber,
		&c.HospitalName, &c.Department, &c.DoctorName, &c.DoctorPhone,
		&c.IssuedDate, &c.IssuedByUserID, &c.Organization,
		&c.Status, &c.ExpiryDate, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *AllergyCard) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO allergy_card (id, card_code, report_id, patient_name, patient_gender, patient_age, patient_id_number,
			hospital_name, department, doctor_name, doctor_phone,
			issued_date, issued_by_user_id, organization, status, expiry_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		c.ID, c.CardCode, c.ReportID, c.PatientName, c.PatientGender, c.PatientAge, c.PatientIDNumber,
		c.HospitalName, c.Department, c.DoctorName, c.DoctorPhone,
		c.IssuedDate, c.IssuedByUserID, c.Organization, c.Status, c.ExpiryDate, c.Notes)
	if err != nil {
		return err
	}
	return r.replaceAllergies(ctx, c)
}

func (r *repoPG) replaceAllergies(ctx context.Context, c *AllergyCard) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM card_allergy WHERE card_id = $1`, c.ID); err != nil {
		return err
	}
	for i := range c.Allergies {
		a := &c.Allergies[i]
		a.ID = uuid.New()
		a.CardID = c.ID
		if _, err := conn.Exec(ctx, `
			INSERT INTO card_allergy (id, card_id, allergen_name, certainty_level, clinical_manifestation, severity_level, reaction_type)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			a.ID, a.CardID, a.AllergenName, a.CertaintyLevel, a.ClinicalManifestation, a.SeverityLevel, a.ReactionType); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadAllergies(ctx context.Context, c *AllergyCard) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, card_id, allergen_name, certainty_level, clinical_manifestation, severity_level, reaction_type
		FROM card_allergy WHERE card_id = $1 ORDER BY allergen_name`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a CardAllergy
		if err := rows.Scan(&a.ID, &a.CardID, &a.AllergenName, &a.CertaintyLevel,
			&a.ClinicalManifestation, &a.SeverityLevel, &a.ReactionType); err != nil {
			return err
		}
		c.Allergies = append(c.Allergies, a)
	}
	return rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*AllergyCard, error) {
	c, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+cardCols+` FROM allergy_card WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return c, r.loadAllergies(ctx, c)
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*AllergyCard, error) {
	c, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+cardCols+` FROM allergy_card WHERE card_code = $1`, code))
	if err != nil {
		return nil, err
	}
	return c, r.loadAllergies(ctx, c)
}

func (r *repoPG) Update(ctx context.Context, c *AllergyCard) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE allergy_card SET patient_name=$2, patient_gender=$3, patient_age=$4, patient_id_number=$5,
			hospital_name=$6, department=$7, doctor_name=$8, doctor_phone=$9,
			status=$10, expiry_date=$11, notes=$12, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.PatientName, c.PatientGender, c.PatientAge, c.PatientIDNumber,
		c.HospitalName, c.Department, c.DoctorName, c.DoctorPhone,
		c.Status, c.ExpiryDate, c.Notes)
	if err != nil {
		return err
	}
	return r.replaceAllergies(ctx, c)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM allergy_card WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, organization, search string, limit, offset int) ([]*AllergyCard, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if organization != "" {
		where += ` AND organization = ` + arg(organization)
	}
	if search != "" {
		p := arg("%" + search + "%")
		where += ` AND (patient_name ILIKE ` + p + ` OR card_code ILIKE ` + p + ` OR hospital_name ILIKE ` + p + `)`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM allergy_card`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cardCols+` FROM allergy_card`+where+` ORDER BY created_at DESC LIMIT `+arg(limit)+` OFFSET `+arg(offset), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AllergyCard
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountByYear(ctx context.Context, year int) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM allergy_card
		WHERE created_at >= make_date($1, 1, 1) AND created_at < make_date($1 + 1, 1, 1)`, year).Scan(&n)
	return n, err
}

func (r *repoPG) LockAllocation(ctx context.Context, year int) error {
	h := fnv.New64a()
	fmt.Fprintf(h, "allergy-card:%d", year)
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(h.Sum64()))
	return err
}
