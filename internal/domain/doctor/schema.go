package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/pkg/currency"
)

// UpsertInput is the payload of the doctor upsert action. Forms send the
// price in reais as typed (AppointmentPrice); JSON callers send cents.
type UpsertInput struct {
	ID                      string `json:"id,omitempty" form:"id" validate:"omitempty,uuid"`
	Name                    string `json:"name" form:"name" validate:"required"`
	Specialty               string `json:"specialty" form:"specialty" validate:"required"`
	AppointmentPrice        string `json:"-" form:"appointmentPrice"`
	AppointmentPriceInCents int    `json:"appointmentPriceInCents" form:"appointmentPriceInCents" validate:"min=1"`
	AvailableFromWeekDay    int    `json:"availableFromWeekDay" form:"availableFromWeekDay" validate:"min=0,max=6"`
	AvailableToWeekDay      int    `json:"availableToWeekDay" form:"availableToWeekDay" validate:"min=0,max=6"`
	AvailableFromTime       string `json:"availableFromTime" form:"availableFromTime" validate:"required,datetime=15:04:05"`
	AvailableToTime         string `json:"availableToTime" form:"availableToTime" validate:"required,datetime=15:04:05"`
	AvatarImageURL          string `json:"avatarImageUrl,omitempty" form:"avatarImageUrl" validate:"omitempty,url"`
}

var upsertMessages = map[string]string{
	"id":                      "ID inválido",
	"name":                    "Nome é obrigatório",
	"specialty":               "Especialidade é obrigatória",
	"appointmentPriceInCents": "Preço da consulta é obrigatório",
	"availableFromWeekDay":    "Dia inicial de disponibilidade inválido",
	"availableToWeekDay":      "Dia final de disponibilidade inválido",
	"availableFromTime":       "Hora de início é obrigatória",
	"availableToTime":         "Hora de término é obrigatória",
	"avatarImageUrl":          "URL inválida",
}

const msgTimeRange = "O horário de término não pode ser anterior ao horário de início"

type DeleteInput struct {
	ID string `json:"id" form:"id" validate:"required,uuid"`
}

var deleteMessages = map[string]string{
	"id": "ID inválido",
}

// Normalize trims text, lowercases the id, converts a typed price to cents
// and rewrites times such as "9:00" or "08:00" as "HH:MM:SS".
func (in *UpsertInput) Normalize() {
	in.ID = strings.ToLower(strings.TrimSpace(in.ID))
	in.Name = strings.TrimSpace(in.Name)
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.AvatarImageURL = strings.TrimSpace(in.AvatarImageURL)
	in.AvailableFromTime = normalizeTime(in.AvailableFromTime)
	in.AvailableToTime = normalizeTime(in.AvailableToTime)

	if price := strings.TrimSpace(in.AppointmentPrice); price != "" {
		cents, err := currency.ParseToCents(price)
		if err != nil {
			cents = 0
		}
		in.AppointmentPriceInCents = cents
	}
}

const timeLayout = "15:04:05"

// normalizeTime zero-pads the hour and adds missing seconds. Values that do
// not parse are returned trimmed for the validator to reject.
func normalizeTime(t string) string {
	t = strings.TrimSpace(t)
	for _, layout := range []string{timeLayout, "15:04"} {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed.Format(timeLayout)
		}
	}
	return t
}

// Check normalizes in and returns its field errors, or nil. Normalized
// times are zero-padded "HH:MM:SS", so text order is time order.
func (in *UpsertInput) Check(v *validation.Validator) validation.Errors {
	in.Normalize()
	errs := v.Check(in, upsertMessages)
	if errs == nil {
		errs = validation.Errors{}
	}
	if !errs.Has("availableFromTime") && !errs.Has("availableToTime") &&
		in.AvailableToTime <= in.AvailableFromTime {
		errs.Add("availableToTime", msgTimeRange)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (in UpsertInput) DoctorID() uuid.UUID {
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
