package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"idCita"`

	ClientID uint   `gorm:"not null;index" json:"idCliente"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	PetID uint `gorm:"not null;index" json:"idMascota"`
	Pet   Pet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	ServiceID uint    `gorm:"not null" json:"idServicio"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	StaffID *uint  `gorm:"index" json:"usuarioIdUser"`
	Staff   *Staff `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Date string `gorm:"column:appointment_date;size:10;not null;index" json:"fecha"`
	Time string `gorm:"column:appointment_time;size:5;not null" json:"hora"`

	Status string `gorm:"size:20;not null;default:'scheduled';index" json:"estadoCita"`

	CreatedAt time.Time `json:"createCita"`
	UpdatedAt time.Time `json:"updateCita"`
}

// AppointmentRow is one result of the joined listing query. Display columns
// still hold ciphertext.
type AppointmentRow struct {
	ID        uint
	ClientID  uint
	PetID     uint
	ServiceID uint
	StaffID   *uint
	Date      string `gorm:"column:appointment_date"`
	Time      string `gorm:"column:appointment_time"`
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time

	ClientName     string
	ClientIDNumber string
	PetName        string
	PetSpecies     string
	ServiceName    string
	ServicePrice   float64
	StaffName      *string
}
