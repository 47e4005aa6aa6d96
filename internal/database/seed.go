package database

import (
	"fmt"
	"log"

	"github.com/LabaLabaSunda/Attendance-system/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaultUsers creates the default admin and demo accounts when no
// admin exists yet, so a fresh install is usable right away.
func SeedDefaultUsers(db *gorm.DB, bcryptCost int) error {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	demoHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := []models.User{
		{Username: "admin", Email: "admin@example.com", PasswordHash: string(adminHash), IsAdmin: true},
		{Username: "user1", Email: "user1@example.com", PasswordHash: string(demoHash)},
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("create default users: %w", err)
	}

	log.Println("default users created: admin/admin123, user1/password123")
	return nil
}
