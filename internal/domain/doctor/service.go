package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/validation"
)

var ErrNotFound = errors.New("doctor not found")

type Service struct {
	repo Repository
	v    *validation.Validator
}

func NewService(repo Repository, v *validation.Validator) *Service {
	return &Service{repo: repo, v: v}
}

// UpsertDoctor creates the doctor when in has no id, otherwise updates the
// clinic's doctor with that id.
func (s *Service) UpsertDoctor(ctx context.Context, clinicID uuid.UUID, in UpsertInput) (*Doctor, error) {
	if errs := in.Check(s.v); errs != nil {
		return nil, errs
	}

	d := &Doctor{
		ID:                      in.DoctorID(),
		ClinicID:                clinicID,
		Name:                    in.Name,
		AvatarImageURL:          in.AvatarImageURL,
		Specialty:               in.Specialty,
		AppointmentPriceInCents: in.AppointmentPriceInCents,
		AvailableFromWeekDay:    in.AvailableFromWeekDay,
		AvailableToWeekDay:      in.AvailableToWeekDay,
		AvailableFromTime:       in.AvailableFromTime,
		AvailableToTime:         in.AvailableToTime,
	}
	if d.ID == uuid.Nil {
		if err := s.repo.Create(ctx, d); err != nil {
			return nil, err
		}
		return d, nil
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.repo.Delete(ctx, clinicID, id)
}

func (s *Service) GetDoctor(ctx context.Context, clinicID, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

// ListDoctors returns the clinic's doctors ordered by name.
func (s *Service) ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	return s.repo.ListByClinic(ctx, clinicID)
}
