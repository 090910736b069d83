package patient

import (
	"strings"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/validation"
)

// UpsertInput is the payload of the upsert action, from a form or JSON.
// An empty ID creates a patient.
type UpsertInput struct {
	ID          string `json:"id,omitempty" form:"id" validate:"omitempty,uuid"`
	Name        string `json:"name" form:"name" validate:"required"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" validate:"required,min=10"`
	Sex         string `json:"sex" form:"sex" validate:"required,oneof=male female"`
}

var upsertMessages = map[string]string{
	"id":          "ID inválido",
	"name":        "Nome é obrigatório",
	"email":       "Email inválido",
	"phoneNumber": "Número de telefone inválido",
	"sex":         "Selecione um sexo válido",
}

// DeleteInput is the payload of the delete action.
type DeleteInput struct {
	ID string `json:"id" form:"id" validate:"required,uuid"`
}

var deleteMessages = map[string]string{
	"id": "ID inválido",
}

// phoneMask holds the characters the "(##) #####-####" input mask adds.
const phoneMask = "()- ._"

// Normalize trims text fields, lowercases the id and strips the phone input
// mask.
func (in *UpsertInput) Normalize() {
	in.ID = strings.ToLower(strings.TrimSpace(in.ID))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Sex = strings.TrimSpace(in.Sex)
	in.PhoneNumber = strings.Map(func(r rune) rune {
		if strings.ContainsRune(phoneMask, r) {
			return -1
		}
		return r
	}, in.PhoneNumber)
}

// Check normalizes in and returns its field errors, or nil.
func (in *UpsertInput) Check(v *validation.Validator) validation.Errors {
	in.Normalize()
	return v.Check(in, upsertMessages)
}

// PatientID parses ID. It is uuid.Nil for a new patient.
func (in UpsertInput) PatientID() uuid.UUID {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (in *DeleteInput) Check(v *validation.Validator) validation.Errors {
	in.ID = strings.ToLower(strings.TrimSpace(in.ID))
	return v.Check(in, deleteMessages)
}
