package patient

import (
	"time"

	"github.com/google/uuid"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Label is the sex as shown on the patient card.
func (s Sex) Label() string {
	if s == SexMale {
		return "Masculino"
	}
	return "Feminino"
}

// Patient belongs to exactly one clinic.
type Patient struct {
	ID          uuid.UUID `json:"id"`
	ClinicID    uuid.UUID `json:"clinicId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Sex         Sex       `json:"sex"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Patient) SexLabel() string {
	return p.Sex.Label()
}

// Input returns the form values that edit p.
func (p Patient) Input() UpsertInput {
	return UpsertInput{
		ID:          p.ID.String(),
		Name:        p.Name,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Sex:         string(p.Sex),
	}
}
