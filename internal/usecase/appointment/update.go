package appointment

import (
	"context"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

type UpdateAppointment struct {
	Deps
	loc *time.Location
}

func NewUpdateAppointment(deps Deps, tz string) *UpdateAppointment {
	return &UpdateAppointment{
		Deps: deps,
		loc:  timezone.Location(tz),
	}
}

// Execute overwrites every scheduling and clinical field and puts the
// appointment back into the initial status.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	id uint,
	in AppointmentInput,
	actor Actor,
) (*models.Appointment, error) {

	slot, err := in.slot(uc.loc)
	if err != nil {
		return nil, err
	}

	before, ap, err := uc.mutate(ctx, "update appointment", id,
		func(ap *models.Appointment) error {
			domain.Schedule(ap, slot)
			return nil
		},
		func(ctx context.Context, ap *models.Appointment) error {
			return uc.Details.ReplaceClinical(ctx, ap, in.Clinical)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.dispatch(actor, audit.ActionAppointmentUpdated, ap.ID, map[string]any{
		"previous_status": before.Status,
		"fecha":           ap.Date,
		"hora":            ap.Time,
	})

	return ap, nil
}
