package models

import "time"

// Appointment is a rendez-vous between a client and an expert,
// optionally tied to a service request.
type Appointment struct {
	BaseModel
	ClientID         string  `gorm:"type:uuid;not null;index"`
	ExpertID         string  `gorm:"type:uuid;not null;index"`
	ServiceRequestID *string `gorm:"type:uuid;index"`
	ServiceID        string  `gorm:"type:uuid;not null"`
	DateTime         time.Time         `gorm:"not null"`
	Duration         int               `gorm:"default:60"` // minutes
	ConsultationType ConsultationType  `gorm:"type:varchar(20);default:'in_person'"`
	Status           AppointmentStatus `gorm:"type:varchar(20);default:'scheduled'"`
	Notes            string

	Client         *User           `gorm:"foreignKey:ClientID"`
	Expert         *User           `gorm:"foreignKey:ExpertID"`
	ServiceRequest *ServiceRequest `gorm:"foreignKey:ServiceRequestID"`
	Service        *Service        `gorm:"foreignKey:ServiceID"`
}
