// Package patient manages patient registration: demographic records keyed by
// a stable UHID that follows the patient across visits.
package patient

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Patient maps to the patients table. Optional demographics are explicit
// pointer fields, never untyped blobs.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	UHID       string    `db:"uhid" json:"uhid"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`

	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`

	Contact ContactInfo `json:"contact"`
	Medical MedicalInfo `json:"medical"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ContactInfo groups the optional contact fields.
type ContactInfo struct {
	Phone        *string `db:"phone" json:"phone,omitempty"`
	Email        *string `db:"email" json:"email,omitempty"`
	AddressLine1 *string `db:"address_line1" json:"address_line1,omitempty"`
	City         *string `db:"city" json:"city,omitempty"`
	State        *string `db:"state" json:"state,omitempty"`
	PostalCode   *string `db:"postal_code" json:"postal_code,omitempty"`
}

// MedicalInfo groups the optional medical background fields.
type MedicalInfo struct {
	BloodGroup        *string  `db:"blood_group" json:"blood_group,omitempty"`
	Allergies         []string `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions []string `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
}

// FullName joins the name parts for display.
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// NewUHID generates a hospital-wide unique patient identifier. ULIDs sort by
// creation time, which keeps registration ledgers in order.
func NewUHID() string {
	return "UH" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
