package models

import "time"

// Pet belongs to a client. Name and Species are stored encrypted.
type Pet struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClientID uint `gorm:"index" json:"client_id"`

	Name    string `gorm:"type:text;not null" json:"name"`
	Species string `gorm:"type:text" json:"species"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
