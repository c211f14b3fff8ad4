// Package report implements adverse drug reaction reports: the full
// clinical payload, the per-department-per-year code allocator, the
// approval workflow, and the historical code backfill.
package report

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels a reporter can assign.
const (
	SeverityDeath               = "death"
	SeverityLifeThreatening     = "life_threatening"
	SeverityHospitalization     = "hospitalization"
	SeverityBirthDefect         = "birth_defect"
	SeverityPermanentDisability = "permanent_disability"
	SeverityNotSerious          = "not_serious"
)

// Outcome of the reaction at reporting time.
const (
	OutcomeRecovered         = "recovered"
	OutcomeRecovering        = "recovering"
	OutcomeNotRecovered      = "not_recovered"
	OutcomeRecoveredSequelae = "recovered_with_sequelae"
	OutcomeDeath             = "death"
	OutcomeUnknown           = "unknown"
)

// Approval workflow states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Report types.
const (
	TypeInitial  = "initial"
	TypeFollowUp = "follow_up"
)

// Assessment scales.
const (
	ScaleWHO     = "who"
	ScaleNaranjo = "naranjo"
)

// ADRReport maps to the adr_report table.
type ADRReport struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ReportCode   *string   `db:"report_code" json:"report_code,omitempty"`
	Organization string    `db:"organization" json:"organization"`
	ReportType   string    `db:"report_type" json:"report_type"`
	ReportDate   time.Time `db:"report_date" json:"report_date"`

	// Patient section.
	PatientName      string     `db:"patient_name" json:"patient_name"`
	PatientBirthDate *time.Time `db:"patient_birth_date" json:"patient_birth_date,omitempty"`
	PatientGender    *string    `db:"patient_gender" json:"patient_gender,omitempty"`
	PatientWeightKg  *float64   `db:"patient_weight_kg" json:"patient_weight_kg,omitempty"`
	PatientEthnicity *string    `db:"patient_ethnicity" json:"patient_ethnicity,omitempty"`
	MedicalHistory   *string    `db:"medical_history" json:"medical_history,omitempty"`

	// Reaction section.
	OnsetDate     *time.Time `db:"onset_date" json:"onset_date,omitempty"`
	Description   string     `db:"description" json:"description"`
	Treatment     *string    `db:"treatment" json:"treatment,omitempty"`
	SeverityLevel string     `db:"severity_level" json:"severity_level"`
	Outcome       *string    `db:"outcome" json:"outcome,omitempty"`

	// Causality section.
	CausalityAssessment *string `db:"causality_assessment" json:"causality_assessment,omitempty"`
	AssessmentScale     *string `db:"assessment_scale" json:"assessment_scale,omitempty"`
	CausalityComment    *string `db:"causality_comment" json:"causality_comment,omitempty"`

	// Reporter section.
	ReporterName       string  `db:"reporter_name" json:"reporter_name"`
	ReporterProfession *string `db:"reporter_profession" json:"reporter_profession,omitempty"`
	ReporterPhone      *string `db:"reporter_phone" json:"reporter_phone,omitempty"`
	ReporterEmail      *string `db:"reporter_email" json:"reporter_email,omitempty"`

	// Approval workflow.
	ApprovalStatus string     `db:"approval_status" json:"approval_status"`
	ApprovedBy     *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `db:"approved_at" json:"approved_at,omitempty"`

	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	SuspectedDrugs  []SuspectedDrug  `db:"-" json:"suspected_drugs"`
	ConcurrentDrugs []ConcurrentDrug `db:"-" json:"concurrent_drugs"`
}

// SuspectedDrug maps to the suspected_drug table. The two reaction
// fields feed the causality suggestion.
type SuspectedDrug struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ReportID uuid.UUID `db:"report_id" json:"report_id"`
	DrugName string    `db:"drug_name" json:"drug_name"`

	DosageForm *string    `db:"dosage_form" json:"dosage_form,omitempty"`
	Dose       *string    `db:"dose" json:"dose,omitempty"`
	Route      *string    `db:"route" json:"route,omitempty"`
	Indication *string    `db:"indication" json:"indication,omitempty"`
	StartDate  *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`

	ReactionImprovedAfterStopping      string `db:"reaction_improved_after_stopping" json:"reaction_improved_after_stopping"`
	ReactionReoccurredAfterRechallenge string `db:"reaction_reoccurred_after_rechallenge" json:"reaction_reoccurred_after_rechallenge"`
}

// ConcurrentDrug maps to the concurrent_drug table.
type ConcurrentDrug struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ReportID uuid.UUID `db:"report_id" json:"report_id"`
	DrugName string    `db:"drug_name" json:"drug_name"`

	Dose      *string    `db:"dose" json:"dose,omitempty"`
	Route     *string    `db:"route" json:"route,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// ListFilter narrows report listings.
type ListFilter struct {
	Organization   string
	Search         string
	SeverityLevel  string
	ApprovalStatus string
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

var validSeverities = map[string]bool{
	SeverityDeath: true, SeverityLifeThreatening: true, SeverityHospitalization: true,
	SeverityBirthDefect: true, SeverityPermanentDisability: true, SeverityNotSerious: true,
}

var validApprovalStatuses = map[string]bool{
	ApprovalPending: true, ApprovalApproved: true, ApprovalRejected: true,
}

var validCausalities = map[string]bool{
	"certain": true, "probable": true, "possible": true,
	"unlikely": true, "unclassified": true, "unclassifiable": true,
}
