package appointment

import (
	"context"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

type MarkAttendanceInput struct {
	Attended bool
	// ActualDate defaults to now.
	ActualDate *time.Time
}

type MarkAttendance struct {
	Deps
	now func() time.Time
}

func NewMarkAttendance(deps Deps) *MarkAttendance {
	return &MarkAttendance{
		Deps: deps,
		now:  time.Now,
	}
}

// Execute closes the appointment as completed or no-show.
func (uc *MarkAttendance) Execute(
	ctx context.Context,
	id uint,
	in MarkAttendanceInput,
	actor Actor,
) (*models.Appointment, error) {

	at := uc.now()
	if in.ActualDate != nil {
		at = *in.ActualDate
	}

	status := domain.StatusNoShow
	if in.Attended {
		status = domain.StatusCompleted
	}

	_, ap, err := uc.mutate(ctx, "mark attendance", id,
		func(ap *models.Appointment) error {
			domain.SetStatus(ap, status)
			return nil
		},
		func(ctx context.Context, ap *models.Appointment) error {
			return uc.Details.MarkAttendance(ctx, ap, in.Attended, at)
		},
	)
	if err != nil {
		return nil, err
	}

	uc.dispatch(actor, audit.ActionAppointmentAttendance, ap.ID, map[string]any{
		"asistio":   in.Attended,
		"fechaReal": at.UTC(),
	})

	return ap, nil
}
