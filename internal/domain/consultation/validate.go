package consultation

import (
	"fmt"
	"strings"
)

// Save failure kinds.
const (
	ValidationFailed = "validation_failed"
	BackendRejected  = "backend_rejected"
)

// FieldError names one invalid field and what is wrong with it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SaveError is returned by the save pipeline. ValidationFailed carries the
// per-field problems and means nothing was written; BackendRejected means the
// payload was valid but the store refused it.
type SaveError struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`

	cause error
}

func (e *SaveError) Unwrap() error { return e.cause }

func (e *SaveError) Error() string {
	if e.Kind == ValidationFailed {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return "validation failed: " + strings.Join(parts, "; ")
	}
	return "save rejected: " + e.Message
}

// vitalRange bounds one measurement. Values are inclusive.
type vitalRange struct {
	field    string
	min, max float64
}

var vitalRanges = []vitalRange{
	{"weight", 0, 500},
	{"height", 0, 300},
	{"systolic", 50, 300},
	{"diastolic", 30, 200},
	{"pulse", 30, 200},
	{"temperature", 90, 110},
	{"spo2", 70, 100},
}

func (v *Vitals) value(field string) *float64 {
	switch field {
	case "weight":
		return v.Weight
	case "height":
		return v.Height
	case "systolic":
		return v.Systolic
	case "diastolic":
		return v.Diastolic
	case "pulse":
		return v.Pulse
	case "temperature":
		return v.Temperature
	case "spo2":
		return v.SpO2
	}
	return nil
}

// Validate checks the draft against the vitals ranges. Absent measurements
// pass; present ones must fall inside their range. A nil return means the
// draft is safe to save.
func (d *Draft) Validate() []FieldError {
	var errs []FieldError
	for _, r := range vitalRanges {
		val := d.Vitals.value(r.field)
		if val == nil {
			continue
		}
		if *val < r.min || *val > r.max {
			errs = append(errs, FieldError{
				Field:   r.field,
				Message: fmt.Sprintf("must be between %g and %g", r.min, r.max),
			})
		}
	}
	return errs
}
