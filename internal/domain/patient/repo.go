package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists patients. Every lookup and mutation is scoped to a
// clinic; rows of other clinics behave as missing and yield ErrNotFound.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Patient, int, error)
}
