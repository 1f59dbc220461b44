package dto

import "time"

type ClientSummary struct {
	Name     string `json:"nombre"`
	IDNumber string `json:"cedula"`
}

type PetSummary struct {
	Name    string `json:"nombre"`
	Species string `json:"especie"`
}

type ServiceSummary struct {
	Name  string  `json:"nombre"`
	Price float64 `json:"precio"`
}

type AppointmentDetailDTO struct {
	Reason          string     `json:"motivo"`
	Symptoms        string     `json:"sintomas"`
	PriorDiagnosis  string     `json:"diagnosticoPrevio"`
	PriorTreatments []string   `json:"tratamientosAnteriores"`
	Status          string     `json:"estado"`
	Notes           string     `json:"notasAdicionales"`
	Observations    string     `json:"observaciones"`
	Attended        bool       `json:"asistio"`
	ActualDate      *time.Time `json:"fechaReal"`
}

// AppointmentDTO is one merged appointment as returned by the read endpoints.
// Details is null when the clinical document is missing.
type AppointmentDTO struct {
	ID        uint      `json:"idCita"`
	ClientID  uint      `json:"idCliente"`
	PetID     uint      `json:"idMascota"`
	ServiceID uint      `json:"idServicio"`
	StaffID   *uint     `json:"usuarioIdUser"`
	Date      string    `json:"fecha"`
	Time      string    `json:"hora"`
	Status    string    `json:"estadoCita"`
	CreatedAt time.Time `json:"createCita"`
	UpdatedAt time.Time `json:"updateCita"`

	Client       ClientSummary         `json:"cliente"`
	Pet          PetSummary            `json:"mascota"`
	Service      ServiceSummary        `json:"servicio"`
	Veterinarian string                `json:"veterinario"`
	Details      *AppointmentDetailDTO `json:"detalles"`
}

type CreatedAppointmentDTO struct {
	Message string `json:"message"`
	ID      uint   `json:"idCita"`
}

type AvailabilityDTO struct {
	Available bool   `json:"disponible"`
	Date      string `json:"fecha"`
	Time      string `json:"hora"`
}
