package appointment

import (
	"strconv"

	"github.com/Javier-Villarroel93/Practicas-Backend/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Schedule overwrites the scheduling fields and resets the status. No
// transition table applies: any prior status may be rescheduled.
func Schedule(ap *models.Appointment, s Slot) {
	ap.ClientID = s.ClientID
	ap.PetID = s.PetID
	ap.ServiceID = s.ServiceID
	ap.StaffID = s.StaffID
	ap.Date = s.Date
	ap.Time = s.Time
	ap.Status = string(InitialStatus())
}

func SetStatus(ap *models.Appointment, s Status) {
	ap.Status = string(s)
}

// Slot is the scheduling part of an appointment as accepted by the write path.
type Slot struct {
	ClientID  uint
	PetID     uint
	ServiceID uint
	StaffID   *uint
	Date      string
	Time      string
}

// Clinical is the free-text part of an appointment kept in the document store.
type Clinical struct {
	Reason          string
	Symptoms        string
	PriorDiagnosis  string
	PriorTreatments []string
	Notes           string
}

// Normalized returns a copy where missing values take their empty form.
func (c Clinical) Normalized() Clinical {
	if c.PriorTreatments == nil {
		c.PriorTreatments = []string{}
	}
	return c
}

// DocumentKey renders the relational id the way documents reference it.
func DocumentKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// NewDetail builds the companion document for a freshly written row.
func NewDetail(ap *models.Appointment, c Clinical) *models.AppointmentDetail {
	c = c.Normalized()
	return &models.AppointmentDetail{
		AppointmentID:   DocumentKey(ap.ID),
		ClientID:        DocumentKey(ap.ClientID),
		PetID:           DocumentKey(ap.PetID),
		Reason:          c.Reason,
		Symptoms:        c.Symptoms,
		PriorDiagnosis:  c.PriorDiagnosis,
		PriorTreatments: c.PriorTreatments,
		Notes:           c.Notes,
		Status:          string(DetailStatusFor(Status(ap.Status))),
		Attended:        false,
	}
}
