// Package allergycard issues patient allergy cards with sequential
// per-year codes and a QR payload for emergency lookup.
package allergycard

import (
	"time"

	"github.com/google/uuid"
)

// Card statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
)

// Certainty levels for an allergy entry.
const (
	CertaintySuspected = "suspected"
	CertaintyConfirmed = "confirmed"
)

// AllergyCard maps to the allergy_card table.
type AllergyCard struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	CardCode string     `db:"card_code" json:"card_code"`
	ReportID *uuid.UUID `db:"report_id" json:"report_id,omitempty"`

	PatientName     string  `db:"patient_name" json:"patient_name"`
	PatientGender   string  `db:"patient_gender" json:"patient_gender"`
	PatientAge      int     `db:"patient_age" json:"patient_age"`
	PatientIDNumber *string `db:"patient_id_number" json:"patient_id_number,omitempty"`

	HospitalName string  `db:"hospital_name" json:"hospital_name"`
	Department   *string `db:"department" json:"department,omitempty"`
	DoctorName   string  `db:"doctor_name" json:"doctor_name"`
	DoctorPhone  *string `db:"doctor_phone" json:"doctor_phone,omitempty"`

	IssuedDate     time.Time `db:"issued_date" json:"issued_date"`
	IssuedByUserID uuid.UUID `db:"issued_by_user_id" json:"issued_by_user_id"`
	Organization   string    `db:"organization" json:"organization"`

	Status     string     `db:"status" json:"status"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Allergies []CardAllergy `db:"-" json:"allergies"`
}

// CardAllergy maps to the card_allergy table.
type CardAllergy struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	CardID                uuid.UUID `db:"card_id" json:"card_id"`
	AllergenName          string    `db:"allergen_name" json:"allergen_name"`
	CertaintyLevel        string    `db:"certainty_level" json:"certainty_level"`
	ClinicalManifestation *string   `db:"clinical_manifestation" json:"clinical_manifestation,omitempty"`
	SeverityLevel         *string   `db:"severity_level" json:"severity_level,omitempty"`
	ReactionType          *string   `db:"reaction_type" json:"reaction_type,omitempty"`
}

// PublicCard is the redacted view served to unauthenticated QR scans:
// enough for emergency care, nothing administrative.
type PublicCard struct {
	CardCode      string        `json:"card_code"`
	PatientName   string        `json:"patient_name"`
	PatientAge    int           `json:"patient_age"`
	PatientGender string        `json:"patient_gender"`
	HospitalName  string        `json:"hospital_name"`
	DoctorName    string        `json:"doctor_name"`
	DoctorPhone   *string       `json:"doctor_phone,omitempty"`
	IssuedDate    time.Time     `json:"issued_date"`
	Status        string        `json:"status"`
	Allergies     []CardAllergy `json:"allergies"`
}

// Public returns the redacted view of the card.
func (c *AllergyCard) Public() *PublicCard {
	return &PublicCard{
		CardCode:      c.CardCode,
		PatientName:   c.PatientName,
		PatientAge:    c.PatientAge,
		PatientGender: c.PatientGender,
		HospitalName:  c.HospitalName,
		DoctorName:    c.DoctorName,
		DoctorPhone:   c.DoctorPhone,
		IssuedDate:    c.IssuedDate,
		Status:        c.Status,
		Allergies:     c.Allergies,
	}
}
