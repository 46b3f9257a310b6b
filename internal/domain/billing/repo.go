package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists invoices, scoped to a hospital.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string, paidAt *time.Time) error
	List(ctx context.Context, hospitalID uuid.UUID, filter ListFilter, limit, offset int) ([]*Invoice, int, error)
}

// ListFilter narrows invoice listings. Zero values are ignored.
type ListFilter struct {
	PatientID uuid.UUID
	Status    string
}
