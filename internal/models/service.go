package models

// Service is a catalog entry a request can be filed against.
type Service struct {
	BaseModel
	Category    string `gorm:"type:varchar(30);not null;index"` // administrative, tourism, fiscal, real_estate, investment
	Title       string `gorm:"not null"`
	Description string
	Price       float64
	Duration    int  `gorm:"default:60"` // indicative handling time, minutes
	IsActive    bool `gorm:"default:true"`
}
