// Package consultation implements the doctor's consultation workflow: a
// working draft the doctor builds up during the visit, derived vitals,
// pick-list catalogs, validation, and the save pipeline that writes the
// finished record onto the appointment.
package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels for symptoms.
const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

// Diagnosis types.
const (
	DiagnosisPrimary   = "primary"
	DiagnosisSecondary = "secondary"
)

// Investigation types.
const (
	InvestigationLab       = "lab"
	InvestigationRadiology = "radiology"
)

// Medication defaults applied when the doctor leaves a field blank.
const (
	DefaultMedicationType = "Tablet"
	DefaultFrequency      = "BD"
	DefaultDuration       = "5 days"
	DefaultInstruction    = "After food"
)

// FollowUpAsNeeded is the quick-pick that sets no concrete date.
const FollowUpAsNeeded = "As needed"

// Vitals holds the measurements captured during the visit. Every field is
// optional; BMI and BSA are derived, never entered.
type Vitals struct {
	Weight      *float64 `json:"weight,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	BMI         *float64 `json:"bmi,omitempty"`
	BSA         *float64 `json:"bsa,omitempty"`
	Systolic    *float64 `json:"systolic,omitempty"`
	Diastolic   *float64 `json:"diastolic,omitempty"`
	Pulse       *float64 `json:"pulse,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	SpO2        *float64 `json:"spo2,omitempty"`
}

type Symptom struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Duration string `json:"duration,omitempty"`
}

type Diagnosis struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Medication struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Dose        string `json:"dose,omitempty"`
	Frequency   string `json:"frequency"`
	Duration    string `json:"duration"`
	Quantity    int    `json:"quantity,omitempty"`
	Instruction string `json:"instruction"`
}

type Investigation struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	Urgency      string `json:"urgency,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type Advice struct {
	Category string `json:"category,omitempty"`
	Text     string `json:"text"`
}

// FollowUp records either a concrete return date or the "As needed" label.
type FollowUp struct {
	Date  *time.Time `json:"date,omitempty"`
	Label string     `json:"label,omitempty"`
}

// Draft is the in-progress consultation the doctor edits before submitting.
type Draft struct {
	AppointmentID  uuid.UUID       `json:"appointment_id"`
	HospitalID     uuid.UUID       `json:"hospital_id"`
	Vitals         Vitals          `json:"vitals"`
	Symptoms       []Symptom       `json:"symptoms"`
	Diagnoses      []Diagnosis     `json:"diagnoses"`
	Medications    []Medication    `json:"medications"`
	Investigations []Investigation `json:"investigations"`
	Advice         []Advice        `json:"advice"`
	FollowUp       FollowUp        `json:"follow_up"`
	Notes          string          `json:"notes,omitempty"`
}
