package patient

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

var ErrNotFound = errors.New("patient not found")

type Service struct {
	repo   Repository
	events realtime.EventPublisher
	logger zerolog.Logger
}

func NewService(repo Repository, events realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

// Register creates a patient record and assigns a UHID. The UHID is stable
// for the patient's lifetime; repeat visits reuse the same record.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	if p.UHID == "" {
		p.UHID = NewUHID()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.publish(ctx, "created", p)
	return nil
}

// Get fetches one patient by id within the hospital.
func (s *Service) Get(ctx context.Context, hospitalID, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, hospitalID, id)
}

// GetByUHID fetches one patient by UHID within the hospital.
func (s *Service) GetByUHID(ctx context.Context, hospitalID uuid.UUID, uhid string) (*Patient, error) {
	return s.repo.GetByUHID(ctx, hospitalID, uhid)
}

// Update rewrites the patient's demographics. The UHID never changes.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, p.HospitalID, p.ID)
	if err != nil {
		return err
	}
	p.UHID = existing.UHID
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.publish(ctx, "updated", p)
	return nil
}

// Delete removes the patient record.
func (s *Service) Delete(ctx context.Context, hospitalID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, hospitalID, id); err != nil {
		return err
	}
	s.publish(ctx, "deleted", &Patient{ID: id, HospitalID: hospitalID})
	return nil
}

// List returns the hospital's patients, newest first.
func (s *Service) List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, hospitalID, limit, offset)
}

// Search filters patients by name, UHID or phone substring.
func (s *Service) Search(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error) {
	if query == "" {
		return s.repo.List(ctx, hospitalID, limit, offset)
	}
	return s.repo.Search(ctx, hospitalID, query, limit, offset)
}

func validate(p *Patient) error {
	if p.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if p.FirstName == "" {
		return fmt.Errorf("first name is required")
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date of birth cannot be in the future")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, p *Patient) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(p)
	err := s.events.Publish(ctx, realtime.Event{
		Type:      eventType,
		Topic:     realtime.Topic("patients", p.HospitalID),
		Table:     "patients",
		RecordID:  p.ID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish patient event")
	}
}
