package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is a persisted per-user record of a system event. Rows
// are created by the lifecycle controller or the messaging engine,
// mutated only to flip IsRead, and keep weak references to their
// trigger (nulled when the trigger is deleted).
type Notification struct {
	BaseModel
	UserID           string           `gorm:"type:uuid;not null;index"`
	Type             NotificationType `gorm:"type:varchar(20);not null"`
	Title            string           `gorm:"size:255;not null"`
	Content          string
	Data             datatypes.JSON `gorm:"type:jsonb"`
	IsRead           bool           `gorm:"default:false"`
	ReadAt           *time.Time
	ServiceRequestID *string `gorm:"type:uuid;index"`
	AppointmentID    *string `gorm:"type:uuid"`
	MessageID        *string `gorm:"type:uuid"`
}
