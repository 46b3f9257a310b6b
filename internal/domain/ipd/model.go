// Package ipd manages inpatient care: the hospital's bed inventory and
// patient admissions. Admitting occupies a bed; discharging frees it.
package ipd

import (
	"time"

	"github.com/google/uuid"
)

// Bed statuses.
const (
	BedAvailable   = "available"
	BedOccupied    = "occupied"
	BedMaintenance = "maintenance"
)

func ValidBedStatus(s string) bool {
	switch s {
	case BedAvailable, BedOccupied, BedMaintenance:
		return true
	}
	return false
}

type Bed struct {
	ID         uuid.UUID `db:"id" json:"id"`
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Ward       string    `db:"ward" json:"ward"`
	Number     string    `db:"number" json:"number"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Admission struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	HospitalID   uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	BedID        uuid.UUID  `db:"bed_id" json:"bed_id"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Reason       *string    `db:"reason" json:"reason,omitempty"`
	AdmittedAt   time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
}

// Active reports whether the patient is still admitted.
func (a *Admission) Active() bool {
	return a.DischargedAt == nil
}

// WardSummary is one row of the bed board.
type WardSummary struct {
	Ward      string `json:"ward"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Occupied  int    `json:"occupied"`
	Beds      []*Bed `json:"beds"`
}
