package models

import "time"

// Client is the pet owner. Name and IDNumber are stored encrypted.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name     string `gorm:"type:text;not null" json:"name"`
	IDNumber string `gorm:"type:text" json:"id_number"`
	Phone    string `gorm:"size:20" json:"phone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
