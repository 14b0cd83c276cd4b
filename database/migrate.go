package database

import (
	"fmt"

	"gorm.io/gorm"

	"servicesbladi_backend/internal/models"
)

// Migrate applies the schema. uuid-ossp provides the uuid_generate_v4
// defaults the models rely on.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.ClientProfile{},
		&models.ExpertProfile{},
		&models.RefreshToken{},
		&models.Service{},
		&models.ServiceRequest{},
		&models.Appointment{},
		&models.Document{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
