package migrations

import (
	"fmt"

	"countries/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// create tables
	if err := db.AutoMigrate(&models.Country{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Wipe drops every table Migrate creates.
func Wipe(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&models.Country{}); err != nil {
		return fmt.Errorf("wipe failed: %w", err)
	}
	return nil
}
