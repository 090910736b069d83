package doctor

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists doctors scoped to a clinic. Rows of other clinics
// behave as missing and yield ErrNotFound.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error)
}
