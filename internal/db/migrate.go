package db

import (
	"errors"
	"fmt"

	"github.com/router-for-me/WhitelistAdmin/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table owned by the service and seeds fixed rows.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Role{},
		&models.User{},
		&models.WhitelistEntry{},
		&models.Package{},
	); errMigrate != nil {
		return fmt.Errorf("db: auto migrate: %w", errMigrate)
	}

	role := models.Role{Name: models.RoleClient}
	if errSeed := conn.Where("name = ?", role.Name).FirstOrCreate(&role).Error; errSeed != nil {
		return fmt.Errorf("db: seed client role: %w", errSeed)
	}
	return nil
}
