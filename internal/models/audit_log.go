package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Action    string `gorm:"size:50;not null;index" json:"action"`
	Entity    string `gorm:"size:50;index" json:"entity"`
	EntityID  *uint  `json:"entity_id"`
	StaffID   *uint  `json:"staff_id"`
	RequestID string `gorm:"size:64" json:"request_id"`

	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
