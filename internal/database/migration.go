package database

import (
	"fmt"

	"github.com/LabaLabaSunda/Attendance-system/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Attendance{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
