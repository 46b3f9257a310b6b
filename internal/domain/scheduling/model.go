// Package scheduling manages outpatient appointments. An appointment row
// doubles as the consultation record: once the visit starts, the doctor's
// findings are written onto the same row.
package scheduling

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// transitions lists the allowed status moves. Completed and cancelled are
// terminal.
var transitions = map[string][]string{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an appointment may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`

	Date   time.Time `db:"date" json:"date"`
	Time   string    `db:"time" json:"time"`
	Reason *string   `db:"reason" json:"reason,omitempty"`
	Status string    `db:"status" json:"status"`

	// Consultation columns, populated when the visit is saved.
	VitalSigns   json.RawMessage `db:"vital_signs" json:"vital_signs,omitempty"`
	Symptoms     json.RawMessage `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis    json.RawMessage `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription json.RawMessage `db:"prescription" json:"prescription,omitempty"`
	FollowUpDate *time.Time      `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Notes        *string         `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ConsultationPatch is the write applied when a consultation is saved. It
// always completes the appointment and stamps updated_at on the row.
type ConsultationPatch struct {
	VitalSigns   json.RawMessage
	Symptoms     json.RawMessage
	Diagnosis    json.RawMessage
	Prescription json.RawMessage
	FollowUpDate *time.Time
	Notes        *string
}

// ListFilter narrows appointment listings. Zero-value fields are ignored.
type ListFilter struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      *time.Time
	Status    string
}
