package billing

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
	ErrNotFound          = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice status change")
)

type Service struct {
	repo   Repository
	events realtime.EventPublisher
	logger zerolog.Logger
}

func NewService(repo Repository, events realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

// Create prices and stores a new invoice in the pending state.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if err := validate(inv); err != nil {
		return err
	}
	inv.Price()
	inv.Status = StatusPending
	if err := s.repo.Create(ctx, inv); err != nil {
		return err
	}
	s.publish(ctx, "created", inv)
	return nil
}

func (s *Service) Get(ctx context.Context, hospitalID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, hospitalID, id)
}

// Update replaces the invoice's line items and reprices it. Only pending
// invoices can change.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	if err := validate(inv); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, inv.HospitalID, inv.ID)
	if err != nil {
		return err
	}
	if existing.Status != StatusPending {
		return fmt.Errorf("%w: %s invoice cannot be edited", ErrInvalidTransition, existing.Status)
	}
	inv.Price()
	if err := s.repo.Update(ctx, inv); err != nil {
		return err
	}
	inv.Status = existing.Status
	s.publish(ctx, "updated", inv)
	return nil
}

// MarkPaid settles a pending invoice.
func (s *Service) MarkPaid(ctx context.Context, hospitalID, id uuid.UUID) (*Invoice, error) {
	return s.setStatus(ctx, hospitalID, id, StatusPaid)
}

// Cancel voids a pending invoice.
func (s *Service) Cancel(ctx context.Context, hospitalID, id uuid.UUID) (*Invoice, error) {
	return s.setStatus(ctx, hospitalID, id, StatusCancelled)
}

func (s *Service) setStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, status)
	}

	var paidAt *time.Time
	if status == StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, hospitalID, id, status, paidAt); err != nil {
		return nil, err
	}
	inv.Status = status
	inv.PaidAt = paidAt
	s.publish(ctx, "updated", inv)
	return inv, nil
}

func (s *Service) List(ctx context.Context, hospitalID uuid.UUID, filter ListFilter, limit, offset int) ([]*Invoice, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("unknown status %q", filter.Status)
	}
	return s.repo.List(ctx, hospitalID, filter, limit, offset)
}

func validate(inv *Invoice) error {
	if inv.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if len(inv.Items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, item := range inv.Items {
		if item.Description == "" {
			return fmt.Errorf("item %d: description is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("item %d: unit price cannot be negative", i)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, inv *Invoice) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(inv)
	err := s.events.Publish(ctx, realtime.Event{
		Type:      eventType,
		Topic:     realtime.Topic("invoices", inv.HospitalID),
		Table:     "invoices",
		RecordID:  inv.ID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish invoice event")
	}
}
