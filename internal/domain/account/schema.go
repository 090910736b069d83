package account

import (
	"strings"

	"github.com/clinic/clinic/internal/platform/validation"
)

const minPasswordLen = 8

type SignUpInput struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

var signUpMessages = map[string]string{
	"name":     "Nome é obrigatório",
	"email":    "Email inválido",
	"password": "A senha deve ter pelo menos 8 caracteres",
}

type SignInInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

var signInMessages = map[string]string{
	"email":    "Email inválido",
	"password": "Senha é obrigatória",
}

type ClinicInput struct {
	Name string `json:"name" form:"name" validate:"required"`
}

var clinicMessages = map[string]string{
	"name": "Nome é obrigatório",
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in *SignUpInput) Check(v *validation.Validator) validation.Errors {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	return v.Check(in, signUpMessages)
}

func (in *SignInInput) Check(v *validation.Validator) validation.Errors {
	in.Email = normalizeEmail(in.Email)
	return v.Check(in, signInMessages)
}

func (in *ClinicInput) Check(v *validation.Validator) validation.Errors {
	in.Name = strings.TrimSpace(in.Name)
	return v.Check(in, clinicMessages)
}
