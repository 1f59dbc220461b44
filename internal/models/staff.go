package models

import "time"

// Staff is a veterinarian or assistant that can be assigned to an appointment.
type Staff struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string `gorm:"type:text;not null" json:"name"`
	Email string `gorm:"size:100" json:"email"`
	Role  string `gorm:"size:20;default:'vet'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}
