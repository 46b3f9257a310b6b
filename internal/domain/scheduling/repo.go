package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists appointments. All reads and writes are scoped to a
// hospital.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) error
	ApplyConsultation(ctx context.Context, hospitalID, id uuid.UUID, patch ConsultationPatch) error
	Delete(ctx context.Context, hospitalID, id uuid.UUID) error
	List(ctx context.Context, hospitalID uuid.UUID, filter ListFilter, limit, offset int) ([]*Appointment, int, error)
}
