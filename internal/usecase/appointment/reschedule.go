package appointment

import (
	"context"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

type RescheduleInput struct {
	Date string
	Time string
	// StaffID keeps the current veterinarian when nil.
	StaffID *uint
}

type RescheduleAppointment struct {
	Deps
	loc *time.Location
}

func NewRescheduleAppointment(deps Deps, tz string) *RescheduleAppointment {
	return &RescheduleAppointment{
		Deps: deps,
		loc:  timezone.Location(tz),
	}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	id uint,
	in RescheduleInput,
	actor Actor,
) (*models.Appointment, error) {

	date, hhmm, err := normalizeSlot(in.Date, in.Time, uc.loc)
	if err != nil {
		return nil, err
	}

	before, ap, err := uc.mutate(ctx, "reschedule appointment", id,
		func(ap *models.Appointment) error {
			staff := ap.StaffID
			if in.StaffID != nil {
				staff = in.StaffID
			}
			domain.Schedule(ap, domain.Slot{
				ClientID:  ap.ClientID,
				PetID:     ap.PetID,
				ServiceID: ap.ServiceID,
				StaffID:   staff,
				Date:      date,
				Time:      hhmm,
			})
			return nil
		},
		func(ctx context.Context, ap *models.Appointment) error {
			return uc.Details.ResetAttendance(ctx, ap)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.dispatch(actor, audit.ActionAppointmentRescheduled, ap.ID, map[string]any{
		"from": before.Date + " " + before.Time,
		"to":   ap.Date + " " + ap.Time,
	})

	return ap, nil
}
