package models

import "time"

// Document is an uploaded artifact attached to a request or an
// appointment. Verification is admin-managed.
type Document struct {
	BaseModel
	ServiceRequestID *string `gorm:"type:uuid;index"`
	AppointmentID    *string `gorm:"type:uuid;index"`
	UploadedByID     string  `gorm:"type:uuid;not null;index"`
	Type             DocumentType `gorm:"type:varchar(20);default:'other'"`
	IsOfficial       bool         `gorm:"default:false"`
	ReferenceNumber  string       `gorm:"size:100"`
	Name             string       `gorm:"size:255;not null"`
	FilePath         string       `gorm:"not null"`
	FileURL          string
	MimeType         string `gorm:"size:100"`
	SizeKB           int64
	Status           DocumentStatus `gorm:"type:varchar(20);default:'pending'"`
	VerifiedByID     *string        `gorm:"type:uuid"`
	VerifiedAt       *time.Time
	RejectionReason  string

	UploadedBy *User `gorm:"foreignKey:UploadedByID"`
	VerifiedBy *User `gorm:"foreignKey:VerifiedByID"`
}
