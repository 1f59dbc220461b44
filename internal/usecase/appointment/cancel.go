package appointment

import (
	"context"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

type CancelAppointment struct {
	Deps
}

func NewCancelAppointment(deps Deps) *CancelAppointment {
	return &CancelAppointment{Deps: deps}
}

// Execute soft-cancels: the row stays and keeps showing up in listings.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	id uint,
	actor Actor,
) (*models.Appointment, error) {

	before, ap, err := uc.mutate(ctx, "cancel appointment", id,
		func(ap *models.Appointment) error {
			domain.SetStatus(ap, domain.StatusCancelled)
			return nil
		},
		func(ctx context.Context, ap *models.Appointment) error {
			return uc.Details.SetDetailStatus(ctx, ap, domain.DetailCancelled, nil)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.dispatch(actor, audit.ActionAppointmentCancelled, ap.ID, map[string]any{
		"previous_status": before.Status,
	})

	return ap, nil
}
