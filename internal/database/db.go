package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"kitchensync/internal/models"
)

// Open initializes the database connection for the given driver
// ("sqlite3" or "postgres") and DSN.
func Open(driver, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates all required tables and the case-insensitive uniqueness
// guards on entity names. Two concurrent sync runs racing a check-then-create
// on the same name rely on these indexes: the losing insert fails with a
// uniqueness violation and the store resolves it as a lookup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Allergen{},
		&models.Ingredient{},
		&models.MenuItem{},
		&models.SyncAudit{},
		&models.SyncStatus{},
	).Error; err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	uniqueNameIndexes := map[string]string{
		"idx_allergens_owner_name":   "allergens",
		"idx_ingredients_owner_name": "ingredients",
		"idx_menu_items_owner_name":  "menu_items",
	}
	for index, table := range uniqueNameIndexes {
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (owner_id, LOWER(name))",
			index, table,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", index, err)
		}
	}

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
