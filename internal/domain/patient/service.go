package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/validation"
)

// ErrNotFound is returned when no patient with the id exists in the clinic.
var ErrNotFound = errors.New("patient not found")

type Service struct {
	repo Repository
	v    *validation.Validator
}

func NewService(repo Repository, v *validation.Validator) *Service {
	return &Service{repo: repo, v: v}
}

// UpsertPatient validates in and creates the patient when in has no id, or
// updates the clinic's patient with that id. Invalid input yields
// validation.Errors; an id unknown to the clinic yields ErrNotFound and
// creates nothing.
func (s *Service) UpsertPatient(ctx context.Context, clinicID uuid.UUID, in UpsertInput) (*Patient, error) {
	if errs := in.Check(s.v); errs != nil {
		return nil, errs
	}

	p := &Patient{
		ID:          in.PatientID(),
		ClinicID:    clinicID,
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Sex:         Sex(in.Sex),
	}
	if p.ID == uuid.Nil {
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient removes the clinic's patient with id.
func (s *Service) DeletePatient(ctx context.Context, clinicID, id uuid.UUID) error {
	return s.repo.Delete(ctx, clinicID, id)
}

func (s *Service) GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, clinicID, id)
}

func (s *Service) ListPatients(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByClinic(ctx, clinicID, limit, offset)
}
