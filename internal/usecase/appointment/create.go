package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

// AppointmentInput is the full writable shape of an appointment, shared by
// create and update.
type AppointmentInput struct {
	ClientID  uint
	PetID     uint
	ServiceID uint
	StaffID   *uint

	Date string
	Time string

	Clinical domain.Clinical
}

func (in AppointmentInput) slot(loc *time.Location) (domain.Slot, error) {
	date, hhmm, err := normalizeSlot(in.Date, in.Time, loc)
	if err != nil {
		return domain.Slot{}, err
	}
	return domain.Slot{
		ClientID:  in.ClientID,
		PetID:     in.PetID,
		ServiceID: in.ServiceID,
		StaffID:   in.StaffID,
		Date:      date,
		Time:      hhmm,
	}, nil
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	Deps
	loc *time.Location
}

func NewCreateAppointment(deps Deps, tz string) *CreateAppointment {
	return &CreateAppointment{
		Deps: deps,
		loc:  timezone.Location(tz),
	}
}

// Execute writes the relational row first and the clinical document second.
// The document write overwrites a default one the consistency sweep may have
// inserted in between. A failed document write deletes the row again.
func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in AppointmentInput,
	actor Actor,
) (*models.Appointment, error) {

	slot, err := in.slot(uc.loc)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{}
	domain.Schedule(ap, slot)

	if err := uc.Repo.CreateAppointment(ctx, ap); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if err := uc.Details.CreateDetail(ctx, domain.NewDetail(ap, in.Clinical)); err != nil {
		id := ap.ID
		return nil, uc.compensate(ctx, "create appointment", id, err, func(ctx context.Context) error {
			return uc.Repo.DeleteAppointment(ctx, id)
		})
	}

	uc.dispatch(actor, audit.ActionAppointmentCreated, ap.ID, map[string]any{
		"fecha": ap.Date,
		"hora":  ap.Time,
	})

	return ap, nil
}
