package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progression/internal/models"
)

// Migrate creates or updates every progression table and its unique indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
