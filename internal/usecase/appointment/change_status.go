package appointment

import (
	"context"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

type ChangeStatusInput struct {
	Status       string
	Observations *string
}

type ChangeStatus struct {
	Deps
}

func NewChangeStatus(deps Deps) *ChangeStatus {
	return &ChangeStatus{Deps: deps}
}

// Execute sets any status; no transition table applies.
func (uc *ChangeStatus) Execute(
	ctx context.Context,
	id uint,
	in ChangeStatusInput,
	actor Actor,
) (*models.Appointment, error) {

	if !domain.IsValidStatus(in.Status) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidStatus)
	}
	status := domain.Status(in.Status)

	before, ap, err := uc.mutate(ctx, "change appointment status", id,
		func(ap *models.Appointment) error {
			domain.SetStatus(ap, status)
			return nil
		},
		func(ctx context.Context, ap *models.Appointment) error {
			return uc.Details.SetDetailStatus(ctx, ap, domain.DetailStatusFor(status), in.Observations)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.dispatch(actor, audit.ActionAppointmentStatus, ap.ID, map[string]any{
		"from": before.Status,
		"to":   ap.Status,
	})

	return ap, nil
}
