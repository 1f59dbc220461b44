package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/audit"
	domain "github.com/Javier-Villarroel93/Practicas-Backend/internal/domain/appointment"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/httperr"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
	"github.com/Javier-Villarroel93/Practicas-Backend/internal/validators"
)

const compensationTimeout = 5 * time.Second

// Deps are the collaborators shared by the write use cases.
type Deps struct {
	Repo    domain.Repository
	Details domain.DetailRepository
	Audit   *audit.Dispatcher
	Logger  *slog.Logger
}

// Actor identifies who triggered a write.
type Actor struct {
	StaffID   *uint
	RequestID string
}

func (d Deps) dispatch(actor Actor, action string, id uint, meta map[string]any) {
	d.Audit.Dispatch(audit.Event{
		Action:    action,
		Entity:    audit.EntityAppointment,
		EntityID:  &id,
		StaffID:   actor.StaffID,
		RequestID: actor.RequestID,
		Metadata:  meta,
	})
}

// ======================================================
// TWO-STORE WRITE
// ======================================================

// mutate loads the row, applies change, saves it and then runs the document
// write. When the document write fails the row is put back as it was loaded.
func (d Deps) mutate(
	ctx context.Context,
	op string,
	id uint,
	change func(ap *models.Appointment) error,
	document func(ctx context.Context, ap *models.Appointment) error,
) (before models.Appointment, ap *models.Appointment, err error) {

	ap, err = d.Repo.GetAppointment(ctx, id)
	if err != nil {
		return before, nil, err
	}
	before = *ap

	if err := change(ap); err != nil {
		return before, nil, err
	}

	if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
		return before, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := document(ctx, ap); err != nil {
		snapshot := before
		return before, nil, d.compensate(ctx, op, ap.ID, err, func(ctx context.Context) error {
			return d.Repo.RestoreAppointment(ctx, &snapshot)
		})
	}

	return before, ap, nil
}

// compensate undoes the relational half of a write whose document half
// failed. It runs detached from the request so a client disconnect does not
// skip it.
func (d Deps) compensate(
	ctx context.Context,
	op string,
	id uint,
	docErr error,
	undo func(ctx context.Context) error,
) error {
	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	docErr = fmt.Errorf("%s: document write: %w", op, docErr)

	if err := undo(uctx); err != nil {
		d.Logger.Error("compensation failed, stores diverged",
			"op", op,
			"appointment_id", id,
			"document_err", docErr,
			"err", err,
		)
		return errors.Join(docErr, fmt.Errorf("%s: compensation: %w", op, err))
	}

	d.Logger.Warn("document write failed, relational change reverted",
		"op", op,
		"appointment_id", id,
		"err", docErr,
	)
	return docErr
}

// ======================================================
// INPUT NORMALIZATION
// ======================================================

func normalizeSlot(date, hhmm string, loc *time.Location) (string, string, error) {
	d, ok := validators.NormalizeDate(date, loc)
	if !ok {
		return "", "", httperr.ErrBusiness(httperr.CodeInvalidDateTime)
	}
	t, ok := validators.NormalizeTime(hhmm)
	if !ok {
		return "", "", httperr.ErrBusiness(httperr.CodeInvalidDateTime)
	}
	return d, t, nil
}
