package account

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	// Create stores u and fails with ErrEmailTaken when the email is in use.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type ClinicRepository interface {
	// CreateForUser stores c and associates it with the user atomically.
	CreateForUser(ctx context.Context, c *Clinic, userID uuid.UUID) error
	// FirstForUser returns the user's earliest clinic, or ErrNotFound.
	FirstForUser(ctx context.Context, userID uuid.UUID) (*Clinic, error)
}
