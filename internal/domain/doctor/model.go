package doctor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Doctor works at one clinic. Availability is a week day range (0 is
// Sunday) and a daily "HH:MM:SS" time window.
type Doctor struct {
	ID                      uuid.UUID `json:"id"`
	ClinicID                uuid.UUID `json:"clinicId"`
	Name                    string    `json:"name"`
	AvatarImageURL          string    `json:"avatarImageUrl,omitempty"`
	Specialty               string    `json:"specialty"`
	AppointmentPriceInCents int       `json:"appointmentPriceInCents"`
	AvailableFromWeekDay    int       `json:"availableFromWeekDay"`
	AvailableToWeekDay      int       `json:"availableToWeekDay"`
	AvailableFromTime       string    `json:"availableFromTime"`
	AvailableToTime         string    `json:"availableToTime"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// Input returns the form values that edit d.
func (d Doctor) Input() UpsertInput {
	return UpsertInput{
		ID:                      d.ID.String(),
		Name:                    d.Name,
		Specialty:               d.Specialty,
		AppointmentPrice:        fmt.Sprintf("%d,%02d", d.AppointmentPriceInCents/100, d.AppointmentPriceInCents%100),
		AppointmentPriceInCents: d.AppointmentPriceInCents,
		AvailableFromWeekDay:    d.AvailableFromWeekDay,
		AvailableToWeekDay:      d.AvailableToWeekDay,
		AvailableFromTime:       d.AvailableFromTime,
		AvailableToTime:         d.AvailableToTime,
		AvatarImageURL:          d.AvatarImageURL,
	}
}
