package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentDetail is the clinical companion document of an appointment,
// linked by the relational id rendered as text.
type AppointmentDetail struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AppointmentID string             `bson:"appointmentId" json:"-"`
	ClientID      string             `bson:"clientId" json:"-"`
	PetID         string             `bson:"petId" json:"-"`

	Reason          string   `bson:"reason" json:"motivo"`
	Symptoms        string   `bson:"symptoms" json:"sintomas"`
	PriorDiagnosis  string   `bson:"priorDiagnosis" json:"diagnosticoPrevio"`
	PriorTreatments []string `bson:"priorTreatments" json:"tratamientosAnteriores"`
	Notes           string   `bson:"notes" json:"notasAdicionales"`
	Observations    string   `bson:"observations" json:"observaciones"`

	Status     string     `bson:"status" json:"estado"`
	Attended   bool       `bson:"attended" json:"asistio"`
	ActualDate *time.Time `bson:"actualDate,omitempty" json:"fechaReal"`

	CreatedAt time.Time `bson:"createdAt" json:"-"`
	UpdatedAt time.Time `bson:"updatedAt" json:"-"`
}
