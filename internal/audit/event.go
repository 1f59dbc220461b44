package audit

import (
	"context"
	"time"
)

const (
	ActionAppointmentCreated     = "appointment_created"
	ActionAppointmentUpdated     = "appointment_updated"
	ActionAppointmentCancelled   = "appointment_cancelled"
	ActionAppointmentStatus      = "appointment_status_changed"
	ActionAppointmentAttendance  = "appointment_attendance_marked"
	ActionAppointmentRescheduled = "appointment_rescheduled"
	ActionDetailRepaired         = "appointment_detail_repaired"

	EntityAppointment = "appointment"
)

type Event struct {
	Action     string
	Entity     string
	EntityID   *uint
	StaffID    *uint
	RequestID  string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Sink persists or forwards one audit event.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}
