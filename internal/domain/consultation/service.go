package consultation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/scheduling"
)

// Backend is the appointment store the consultation reads from and writes
// to. The scheduling service satisfies it.
type Backend interface {
	Get(ctx context.Context, hospitalID, id uuid.UUID) (*scheduling.Appointment, error)
	CompleteConsultation(ctx context.Context, hospitalID, id uuid.UUID, patch scheduling.ConsultationPatch) (*scheduling.Appointment, error)
}

type Service struct {
	backend Backend
	logger  zerolog.Logger
}

func NewService(backend Backend, logger zerolog.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// vitalSignsRecord is the persisted shape of the vitals block. Blood pressure
// is stored as a single "systolic/diastolic" string, null when either half is
// missing.
type vitalSignsRecord struct {
	Weight        *float64 `json:"weight"`
	Height        *float64 `json:"height"`
	BMI           *float64 `json:"bmi"`
	BSA           *float64 `json:"bsa"`
	BloodPressure *string  `json:"blood_pressure"`
	Pulse         *float64 `json:"pulse"`
	Temperature   *float64 `json:"temperature"`
	SpO2          *float64 `json:"spo2"`
}

type prescriptionRecord struct {
	Medications    []Medication    `json:"medications"`
	Investigations []Investigation `json:"investigations"`
	Advice         []Advice        `json:"advice"`
}

// diagnosisRecord persists the structured entries alongside the joined
// display string downstream consumers render.
type diagnosisRecord struct {
	Entries []Diagnosis `json:"entries"`
	Display string      `json:"display"`
}

func diagnosisDisplay(entries []Diagnosis) string {
	names := make([]string, 0, len(entries))
	for _, d := range entries {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

// Load hydrates a draft from the appointment. A previously completed
// consultation comes back with its saved sections decoded so the record can
// be reviewed or corrected; an unsaved one yields an empty draft.
func (s *Service) Load(ctx context.Context, hospitalID, appointmentID uuid.UUID) (*Draft, error) {
	a, err := s.backend.Get(ctx, hospitalID, appointmentID)
	if err != nil {
		return nil, err
	}

	d := &Draft{AppointmentID: a.ID, HospitalID: a.HospitalID}
	if a.Notes != nil {
		d.Notes = *a.Notes
	}
	if a.FollowUpDate != nil {
		date := *a.FollowUpDate
		d.FollowUp = FollowUp{Date: &date}
	}

	if len(a.VitalSigns) > 0 {
		var vs vitalSignsRecord
		if err := json.Unmarshal(a.VitalSigns, &vs); err != nil {
			return nil, fmt.Errorf("decode vital signs: %w", err)
		}
		d.Vitals = Vitals{
			Weight:      vs.Weight,
			Height:      vs.Height,
			BMI:         vs.BMI,
			BSA:         vs.BSA,
			Pulse:       vs.Pulse,
			Temperature: vs.Temperature,
			SpO2:        vs.SpO2,
		}
		if vs.BloodPressure != nil {
			if sys, dia, ok := splitBloodPressure(*vs.BloodPressure); ok {
				d.Vitals.Systolic = &sys
				d.Vitals.Diastolic = &dia
			}
		}
	}

	if len(a.Symptoms) > 0 {
		if err := json.Unmarshal(a.Symptoms, &d.Symptoms); err != nil {
			return nil, fmt.Errorf("decode symptoms: %w", err)
		}
	}
	if len(a.Diagnosis) > 0 {
		var diag diagnosisRecord
		if err := json.Unmarshal(a.Diagnosis, &diag); err != nil {
			return nil, fmt.Errorf("decode diagnosis: %w", err)
		}
		d.Diagnoses = diag.Entries
	}
	if len(a.Prescription) > 0 {
		var rx prescriptionRecord
		if err := json.Unmarshal(a.Prescription, &rx); err != nil {
			return nil, fmt.Errorf("decode prescription: %w", err)
		}
		d.Medications = rx.Medications
		d.Investigations = rx.Investigations
		d.Advice = rx.Advice
	}
	return d, nil
}

// Submit validates the draft and writes it onto the appointment, completing
// the visit. On validation failure nothing is written and the returned
// SaveError lists the offending fields. A store failure surfaces as a
// BackendRejected SaveError.
func (s *Service) Submit(ctx context.Context, d *Draft) (*scheduling.Appointment, error) {
	if fieldErrs := d.Validate(); len(fieldErrs) > 0 {
		return nil, &SaveError{Kind: ValidationFailed, Fields: fieldErrs}
	}

	d.RecomputeDerivedVitals()

	patch, err := buildPatch(d)
	if err != nil {
		return nil, &SaveError{Kind: BackendRejected, Message: err.Error()}
	}

	a, err := s.backend.CompleteConsultation(ctx, d.HospitalID, d.AppointmentID, patch)
	if err != nil {
		s.logger.Error().Err(err).
			Str("appointment_id", d.AppointmentID.String()).
			Msg("consultation save rejected")
		return nil, &SaveError{Kind: BackendRejected, Message: err.Error(), cause: err}
	}

	s.logger.Info().
		Str("appointment_id", d.AppointmentID.String()).
		Int("symptoms", len(d.Symptoms)).
		Int("diagnoses", len(d.Diagnoses)).
		Int("medications", len(d.Medications)).
		Msg("consultation saved")
	return a, nil
}

func buildPatch(d *Draft) (scheduling.ConsultationPatch, error) {
	vs := vitalSignsRecord{
		Weight:        d.Vitals.Weight,
		Height:        d.Vitals.Height,
		BMI:           d.Vitals.BMI,
		BSA:           d.Vitals.BSA,
		BloodPressure: bloodPressure(d.Vitals),
		Pulse:         d.Vitals.Pulse,
		Temperature:   d.Vitals.Temperature,
		SpO2:          d.Vitals.SpO2,
	}
	vitalsJSON, err := json.Marshal(vs)
	if err != nil {
		return scheduling.ConsultationPatch{}, fmt.Errorf("encode vital signs: %w", err)
	}

	symptomsJSON, err := json.Marshal(emptyAsSlice(d.Symptoms))
	if err != nil {
		return scheduling.ConsultationPatch{}, fmt.Errorf("encode symptoms: %w", err)
	}

	diagnosisJSON, err := json.Marshal(diagnosisRecord{
		Entries: emptyAsSlice(d.Diagnoses),
		Display: diagnosisDisplay(d.Diagnoses),
	})
	if err != nil {
		return scheduling.ConsultationPatch{}, fmt.Errorf("encode diagnosis: %w", err)
	}

	rx := prescriptionRecord{
		Medications:    emptyAsSlice(d.Medications),
		Investigations: emptyAsSlice(d.Investigations),
		Advice:         emptyAsSlice(d.Advice),
	}
	rxJSON, err := json.Marshal(rx)
	if err != nil {
		return scheduling.ConsultationPatch{}, fmt.Errorf("encode prescription: %w", err)
	}

	patch := scheduling.ConsultationPatch{
		VitalSigns:   vitalsJSON,
		Symptoms:     symptomsJSON,
		Diagnosis:    diagnosisJSON,
		Prescription: rxJSON,
		FollowUpDate: d.FollowUp.Date,
	}
	if d.Notes != "" {
		notes := d.Notes
		patch.Notes = &notes
	}
	return patch, nil
}

// bloodPressure formats "systolic/diastolic", or nil when either half is
// missing.
func bloodPressure(v Vitals) *string {
	if v.Systolic == nil || v.Diastolic == nil {
		return nil
	}
	bp := fmt.Sprintf("%g/%g", *v.Systolic, *v.Diastolic)
	return &bp
}

func splitBloodPressure(bp string) (sys, dia float64, ok bool) {
	if _, err := fmt.Sscanf(bp, "%g/%g", &sys, &dia); err != nil {
		return 0, 0, false
	}
	return sys, dia, true
}

// emptyAsSlice keeps nil lists encoding as [] rather than null.
func emptyAsSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
