package ipd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/realtime"
)

var (
	ErrBedNotFound       = errors.New("bed not found")
	ErrAdmissionNotFound = errors.New("admission not found")
	ErrBedUnavailable    = errors.New("bed is not available")
)

type Service struct {
	beds       BedRepository
	admissions AdmissionRepository
	events     realtime.EventPublisher
	logger     zerolog.Logger
}

func NewService(beds BedRepository, admissions AdmissionRepository, events realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{beds: beds, admissions: admissions, events: events, logger: logger}
}

// AddBed registers a bed in the inventory, available by default.
func (s *Service) AddBed(ctx context.Context, b *Bed) error {
	if b.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if b.Ward == "" {
		return fmt.Errorf("ward is required")
	}
	if b.Number == "" {
		return fmt.Errorf("bed number is required")
	}
	if b.Status == "" {
		b.Status = BedAvailable
	}
	if !ValidBedStatus(b.Status) {
		return fmt.Errorf("unknown bed status %q", b.Status)
	}
	if err := s.beds.Create(ctx, b); err != nil {
		return err
	}
	s.publishBed(ctx, "created", b)
	return nil
}

// SetBedStatus moves a bed between available and maintenance. Occupancy is
// driven by admissions, never set directly.
func (s *Service) SetBedStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) (*Bed, error) {
	if status != BedAvailable && status != BedMaintenance {
		return nil, fmt.Errorf("status must be available or maintenance")
	}
	b, err := s.beds.GetByID(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if b.Status == BedOccupied {
		return nil, fmt.Errorf("%w: bed is occupied", ErrBedUnavailable)
	}
	if err := s.beds.UpdateStatus(ctx, hospitalID, id, status); err != nil {
		return nil, err
	}
	b.Status = status
	s.publishBed(ctx, "updated", b)
	return b, nil
}

// RemoveBed deletes an unoccupied bed from the inventory.
func (s *Service) RemoveBed(ctx context.Context, hospitalID, id uuid.UUID) error {
	b, err := s.beds.GetByID(ctx, hospitalID, id)
	if err != nil {
		return err
	}
	if b.Status == BedOccupied {
		return fmt.Errorf("%w: bed is occupied", ErrBedUnavailable)
	}
	if err := s.beds.Delete(ctx, hospitalID, id); err != nil {
		return err
	}
	s.publishBed(ctx, "deleted", b)
	return nil
}

// BedBoard groups the hospital's beds by ward with occupancy counts.
func (s *Service) BedBoard(ctx context.Context, hospitalID uuid.UUID) ([]*WardSummary, error) {
	beds, err := s.beds.List(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	byWard := make(map[string]*WardSummary)
	for _, b := range beds {
		w, ok := byWard[b.Ward]
		if !ok {
			w = &WardSummary{Ward: b.Ward}
			byWard[b.Ward] = w
		}
		w.Total++
		switch b.Status {
		case BedAvailable:
			w.Available++
		case BedOccupied:
			w.Occupied++
		}
		w.Beds = append(w.Beds, b)
	}

	wards := make([]*WardSummary, 0, len(byWard))
	for _, w := range byWard {
		wards = append(wards, w)
	}
	sort.Slice(wards, func(i, j int) bool { return wards[i].Ward < wards[j].Ward })
	return wards, nil
}

// Admit places a patient in an available bed and opens an admission.
func (s *Service) Admit(ctx context.Context, a *Admission) error {
	if a.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.BedID == uuid.Nil {
		return fmt.Errorf("bed_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}

	bed, err := s.beds.GetByID(ctx, a.HospitalID, a.BedID)
	if err != nil {
		return err
	}
	if bed.Status != BedAvailable {
		return fmt.Errorf("%w: bed %s is %s", ErrBedUnavailable, bed.Number, bed.Status)
	}

	if a.AdmittedAt.IsZero() {
		a.AdmittedAt = time.Now().UTC()
	}
	if err := s.admissions.Create(ctx, a); err != nil {
		return err
	}
	if err := s.beds.UpdateStatus(ctx, a.HospitalID, a.BedID, BedOccupied); err != nil {
		return err
	}

	s.logger.Info().
		Str("admission_id", a.ID.String()).
		Str("bed", bed.Ward+"/"+bed.Number).
		Msg("patient admitted")
	s.publishAdmission(ctx, "created", a)
	return nil
}

// Discharge closes the admission and frees its bed.
func (s *Service) Discharge(ctx context.Context, hospitalID, id uuid.UUID) (*Admission, error) {
	a, err := s.admissions.GetByID(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if !a.Active() {
		return nil, fmt.Errorf("admission already discharged")
	}

	if err := s.admissions.Discharge(ctx, hospitalID, id); err != nil {
		return nil, err
	}
	if err := s.beds.UpdateStatus(ctx, hospitalID, a.BedID, BedAvailable); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a.DischargedAt = &now
	s.logger.Info().Str("admission_id", a.ID.String()).Msg("patient discharged")
	s.publishAdmission(ctx, "updated", a)
	return a, nil
}

func (s *Service) GetAdmission(ctx context.Context, hospitalID, id uuid.UUID) (*Admission, error) {
	return s.admissions.GetByID(ctx, hospitalID, id)
}

func (s *Service) ListAdmissions(ctx context.Context, hospitalID uuid.UUID, activeOnly bool, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.List(ctx, hospitalID, activeOnly, limit, offset)
}

func (s *Service) publishBed(ctx context.Context, eventType string, b *Bed) {
	s.publish(ctx, eventType, "beds", b.HospitalID, b.ID, b)
}

func (s *Service) publishAdmission(ctx context.Context, eventType string, a *Admission) {
	s.publish(ctx, eventType, "admissions", a.HospitalID, a.ID, a)
}

func (s *Service) publish(ctx context.Context, eventType, table string, hospitalID, recordID uuid.UUID, payload any) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(payload)
	err := s.events.Publish(ctx, realtime.Event{
		Type:      eventType,
		Topic:     realtime.Topic(table, hospitalID),
		Table:     table,
		RecordID:  recordID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("table", table).Msg("failed to publish event")
	}
}
