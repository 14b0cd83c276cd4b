package models

import "time"

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null"`
	Name         string   `gorm:"not null"`
	FirstName    string   `gorm:"not null"`
	Phone        string
	Language     string `gorm:"type:varchar(5);default:'fr'"` // fr, ar, en
	IsActive     bool   `gorm:"default:true"`
	LastActiveAt *time.Time

	// Relations
	ClientProfile *ClientProfile `gorm:"foreignKey:UserID"`
	ExpertProfile *ExpertProfile `gorm:"foreignKey:UserID"`
}

// FullName is the display form used in messages and notifications.
func (u *User) FullName() string {
	return u.FirstName + " " + u.Name
}

// ClientProfile carries diaspora-specific client data.
type ClientProfile struct {
	BaseModel
	UserID             string `gorm:"not null;uniqueIndex"`
	MREStatus          bool   `gorm:"default:false"` // Marocain Résidant à l'Étranger
	CountryOfResidence string
	City               string
}

type ExpertProfile struct {
	BaseModel
	UserID          string `gorm:"not null;uniqueIndex"`
	Specialty       string
	YearsExperience int
	City            string
	Biography       string
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
