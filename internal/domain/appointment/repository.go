package appointment

import (
	"context"
	"time"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

// Repository is the relational side of an appointment.
type Repository interface {
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// RestoreAppointment writes ap back exactly as given, timestamps included.
	RestoreAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// DeleteAppointment is only used to undo a create whose document write failed.
	DeleteAppointment(
		ctx context.Context,
		id uint,
	) error

	ListAppointments(
		ctx context.Context,
		f ListFilter,
	) ([]models.AppointmentRow, error)

	HasSlotConflict(
		ctx context.Context,
		date string,
		hhmm string,
		staffID *uint,
		excludeID uint,
	) (bool, error)

	// ListAppointmentsAfter pages through appointments created before
	// createdBefore, by ascending id.
	ListAppointmentsAfter(
		ctx context.Context,
		afterID uint,
		createdBefore time.Time,
		limit int,
	) ([]models.Appointment, error)
}

// DetailRepository is the document side of an appointment. Lookups are keyed
// by DocumentKey of the relational id.
type DetailRepository interface {
	// CreateDetail writes the whole document, overwriting one that already
	// exists for the same appointment.
	CreateDetail(
		ctx context.Context,
		d *models.AppointmentDetail,
	) error

	// InsertDetailIfMissing writes d only when the appointment has no
	// document yet and reports whether it did.
	InsertDetailIfMissing(
		ctx context.Context,
		d *models.AppointmentDetail,
	) (bool, error)

	// GetDetail returns nil, nil when no document exists.
	GetDetail(
		ctx context.Context,
		appointmentID string,
	) (*models.AppointmentDetail, error)

	// ReplaceClinical overwrites the clinical fields, resets attendance
	// (clearing the actual date), mirrors the row status and creates the
	// document when missing.
	ReplaceClinical(
		ctx context.Context,
		ap *models.Appointment,
		c Clinical,
	) error

	// ResetAttendance clears attendance after a reschedule.
	ResetAttendance(
		ctx context.Context,
		ap *models.Appointment,
	) error

	SetDetailStatus(
		ctx context.Context,
		ap *models.Appointment,
		status DetailStatus,
		observations *string,
	) error

	MarkAttendance(
		ctx context.Context,
		ap *models.Appointment,
		attended bool,
		at time.Time,
	) error

	// ExistingDetails reports which of the given keys have a document.
	ExistingDetails(
		ctx context.Context,
		appointmentIDs []string,
	) (map[string]bool, error)
}
