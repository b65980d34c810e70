package db

import (
	"fmt"

	"github.com/eaterybot/eatery/internal/config"
	"github.com/eaterybot/eatery/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.MenuItem{},
		&models.OrderItem{},
		&models.OrderTracking{},
	}
}

// AutoMigrate creates or updates all eatery tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedMenu upserts MenuItem rows from configuration. Prices for existing
// items are updated in place.
func SeedMenu(db *gorm.DB, menu []config.MenuEntry) error {
	for _, entry := range menu {
		item := models.MenuItem{
			Name:  entry.Name,
			Price: entry.Price,
		}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"price"}),
		}).Create(&item)
		if result.Error != nil {
			return fmt.Errorf("db: seed menu item %q: %w", entry.Name, result.Error)
		}
	}
	return nil
}
