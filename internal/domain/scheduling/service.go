package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/realtime"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo   Repository
	events realtime.EventPublisher
	logger zerolog.Logger
}

func NewService(repo Repository, events realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

// Book creates a new appointment in the scheduled state.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if err := validate(a); err != nil {
		return err
	}
	a.Status = StatusScheduled
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, "created", a)
	return nil
}

func (s *Service) Get(ctx context.Context, hospitalID, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, hospitalID, id)
}

// Reschedule rewrites the appointment's slot details. Status is changed only
// through Transition.
func (s *Service) Reschedule(ctx context.Context, a *Appointment) error {
	if err := validate(a); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, a.HospitalID, a.ID)
	if err != nil {
		return err
	}
	if existing.Status == StatusCompleted || existing.Status == StatusCancelled {
		return fmt.Errorf("%w: cannot reschedule a %s appointment", ErrInvalidTransition, existing.Status)
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	a.Status = existing.Status
	s.publish(ctx, "updated", a)
	return nil
}

// Transition moves the appointment to a new status, enforcing the
// scheduled -> in-progress -> completed/cancelled flow.
func (s *Service) Transition(ctx context.Context, hospitalID, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	a, err := s.repo.GetByID(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, hospitalID, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	s.publish(ctx, "updated", a)
	return a, nil
}

// Cancel is a convenience wrapper over Transition.
func (s *Service) Cancel(ctx context.Context, hospitalID, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, hospitalID, id, StatusCancelled)
}

// CompleteConsultation writes the consultation findings onto the appointment
// row and marks it completed. Callers are expected to have validated the
// payload; the only state check here is the status flow.
func (s *Service) CompleteConsultation(ctx context.Context, hospitalID, id uuid.UUID, patch ConsultationPatch) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusCompleted)
	}
	if err := s.repo.ApplyConsultation(ctx, hospitalID, id, patch); err != nil {
		return nil, err
	}
	a, err = s.repo.GetByID(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "updated", a)
	return a, nil
}

func (s *Service) Delete(ctx context.Context, hospitalID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, hospitalID, id); err != nil {
		return err
	}
	s.publish(ctx, "deleted", &Appointment{ID: id, HospitalID: hospitalID})
	return nil
}

func (s *Service) List(ctx context.Context, hospitalID uuid.UUID, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("unknown status %q", filter.Status)
	}
	return s.repo.List(ctx, hospitalID, filter, limit, offset)
}

func validate(a *Appointment) error {
	if a.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.Time == "" {
		return fmt.Errorf("time is required")
	}
	if _, err := time.Parse("15:04", a.Time); err != nil {
		return fmt.Errorf("time must be in HH:MM format")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, a *Appointment) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(a)
	err := s.events.Publish(ctx, realtime.Event{
		Type:      eventType,
		Topic:     realtime.Topic("appointments", a.HospitalID),
		Table:     "appointments",
		RecordID:  a.ID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish appointment event")
	}
}
