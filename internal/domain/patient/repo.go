package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for patients. Every query is
// scoped to one hospital.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Patient, error)
	GetByUHID(ctx context.Context, hospitalID uuid.UUID, uhid string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, hospitalID, id uuid.UUID) error
	List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error)
}
