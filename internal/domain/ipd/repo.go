package ipd

import (
	"context"

	"github.com/google/uuid"
)

// BedRepository persists the bed inventory, scoped to a hospital.
type BedRepository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Bed, error)
	UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) error
	List(ctx context.Context, hospitalID uuid.UUID) ([]*Bed, error)
	Delete(ctx context.Context, hospitalID, id uuid.UUID) error
}

// AdmissionRepository persists admissions, scoped to a hospital.
type AdmissionRepository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Admission, error)
	GetActiveByBed(ctx context.Context, hospitalID, bedID uuid.UUID) (*Admission, error)
	Discharge(ctx context.Context, hospitalID, id uuid.UUID) error
	List(ctx context.Context, hospitalID uuid.UUID, activeOnly bool, limit, offset int) ([]*Admission, int, error)
}
