package models

import "time"

// ServiceRequest tracks one unit of work from a client through its
// status lifecycle. ClientID is immutable after creation; ExpertID is
// assignable once (admins may re-assign).
type ServiceRequest struct {
	BaseModel
	ClientID    string `gorm:"type:uuid;not null;index"`
	ExpertID    *string `gorm:"type:uuid;index"`
	ServiceID   string `gorm:"type:uuid;not null;index"`
	Title       string `gorm:"size:100;not null"`
	Description string `gorm:"not null"`
	Status      RequestStatus   `gorm:"type:varchar(20);default:'new';index"`
	Priority    RequestPriority `gorm:"type:varchar(20);default:'medium'"`
	DesiredDate *time.Time
	IsUrgent    bool `gorm:"default:false"`

	Client  *User    `gorm:"foreignKey:ClientID"`
	Expert  *User    `gorm:"foreignKey:ExpertID"`
	Service *Service `gorm:"foreignKey:ServiceID"`

	// Owned rows, removed with the request. Messages are not owned and
	// survive request deletion.
	Appointments []Appointment `gorm:"foreignKey:ServiceRequestID;constraint:OnDelete:CASCADE"`
	Documents    []Document    `gorm:"foreignKey:ServiceRequestID;constraint:OnDelete:CASCADE"`
}
