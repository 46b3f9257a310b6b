package consultation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AddSymptom appends a symptom to the draft. Severity defaults to Mild.
func (d *Draft) AddSymptom(s Symptom) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("symptom name is required")
	}
	if s.Severity == "" {
		s.Severity = SeverityMild
	}
	switch s.Severity {
	case SeverityMild, SeverityModerate, SeveritySevere:
	default:
		return fmt.Errorf("unknown severity %q", s.Severity)
	}
	d.Symptoms = append(d.Symptoms, s)
	return nil
}

// AddDiagnosis appends a diagnosis. The first diagnosis defaults to primary,
// later ones to secondary, unless a type is given.
func (d *Draft) AddDiagnosis(dx Diagnosis) error {
	if strings.TrimSpace(dx.Name) == "" {
		return fmt.Errorf("diagnosis name is required")
	}
	if dx.Type == "" {
		if len(d.Diagnoses) == 0 {
			dx.Type = DiagnosisPrimary
		} else {
			dx.Type = DiagnosisSecondary
		}
	}
	switch dx.Type {
	case DiagnosisPrimary, DiagnosisSecondary:
	default:
		return fmt.Errorf("unknown diagnosis type %q", dx.Type)
	}
	d.Diagnoses = append(d.Diagnoses, dx)
	return nil
}

// AddMedication appends a medication, filling blank fields with the standard
// defaults: Tablet, BD, 5 days, after food.
func (d *Draft) AddMedication(m Medication) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("medication name is required")
	}
	if m.Type == "" {
		m.Type = DefaultMedicationType
	}
	if m.Frequency == "" {
		m.Frequency = DefaultFrequency
	}
	if m.Duration == "" {
		m.Duration = DefaultDuration
	}
	if m.Instruction == "" {
		m.Instruction = DefaultInstruction
	}
	d.Medications = append(d.Medications, m)
	return nil
}

// AddInvestigation appends a lab or radiology order.
func (d *Draft) AddInvestigation(inv Investigation) error {
	if strings.TrimSpace(inv.Name) == "" {
		return fmt.Errorf("investigation name is required")
	}
	if inv.Type == "" {
		inv.Type = InvestigationLab
	}
	switch inv.Type {
	case InvestigationLab, InvestigationRadiology:
	default:
		return fmt.Errorf("unknown investigation type %q", inv.Type)
	}
	d.Investigations = append(d.Investigations, inv)
	return nil
}

// AddAdvice appends one line of advice.
func (d *Draft) AddAdvice(a Advice) error {
	if strings.TrimSpace(a.Text) == "" {
		return fmt.Errorf("advice text is required")
	}
	d.Advice = append(d.Advice, a)
	return nil
}

// RemoveSymptom deletes the symptom at index i, preserving the order of the
// remaining entries.
func (d *Draft) RemoveSymptom(i int) error {
	if i < 0 || i >= len(d.Symptoms) {
		return fmt.Errorf("symptom index %d out of range", i)
	}
	d.Symptoms = append(d.Symptoms[:i], d.Symptoms[i+1:]...)
	return nil
}

func (d *Draft) RemoveDiagnosis(i int) error {
	if i < 0 || i >= len(d.Diagnoses) {
		return fmt.Errorf("diagnosis index %d out of range", i)
	}
	d.Diagnoses = append(d.Diagnoses[:i], d.Diagnoses[i+1:]...)
	return nil
}

func (d *Draft) RemoveMedication(i int) error {
	if i < 0 || i >= len(d.Medications) {
		return fmt.Errorf("medication index %d out of range", i)
	}
	d.Medications = append(d.Medications[:i], d.Medications[i+1:]...)
	return nil
}

func (d *Draft) RemoveInvestigation(i int) error {
	if i < 0 || i >= len(d.Investigations) {
		return fmt.Errorf("investigation index %d out of range", i)
	}
	d.Investigations = append(d.Investigations[:i], d.Investigations[i+1:]...)
	return nil
}

func (d *Draft) RemoveAdvice(i int) error {
	if i < 0 || i >= len(d.Advice) {
		return fmt.Errorf("advice index %d out of range", i)
	}
	d.Advice = append(d.Advice[:i], d.Advice[i+1:]...)
	return nil
}

// RecomputeDerivedVitals fills in BMI and BSA from weight (kg) and height
// (cm). When either input is missing, both derived values are cleared.
// Calling it repeatedly with the same inputs yields the same outputs.
func (d *Draft) RecomputeDerivedVitals() {
	v := &d.Vitals
	if v.Weight == nil || v.Height == nil || *v.Height == 0 {
		v.BMI = nil
		v.BSA = nil
		return
	}
	w, h := *v.Weight, *v.Height

	bmi := round(w/((h/100)*(h/100)), 1)
	bsa := round(math.Sqrt(w*h/3600), 2)
	v.BMI = &bmi
	v.BSA = &bsa
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// followUpOffsets maps quick-pick labels to calendar offsets.
var followUpOffsets = map[string]struct{ years, months, days int }{
	"1 week":   {0, 0, 7},
	"2 weeks":  {0, 0, 14},
	"1 month":  {0, 1, 0},
	"3 months": {0, 3, 0},
	"6 months": {0, 6, 0},
}

// FollowUpQuickPicks lists the labels offered on the form, in display order.
var FollowUpQuickPicks = []string{
	"1 week", "2 weeks", "1 month", "3 months", "6 months", FollowUpAsNeeded,
}

// ApplyFollowUpQuickPick sets the follow-up from a quick-pick label, computed
// from now with calendar arithmetic. "As needed" records the label with no
// date.
func (d *Draft) ApplyFollowUpQuickPick(label string, now time.Time) error {
	if label == FollowUpAsNeeded {
		d.FollowUp = FollowUp{Label: label}
		return nil
	}
	off, ok := followUpOffsets[label]
	if !ok {
		return fmt.Errorf("unknown follow-up option %q", label)
	}
	date := now.AddDate(off.years, off.months, off.days)
	d.FollowUp = FollowUp{Date: &date, Label: label}
	return nil
}
