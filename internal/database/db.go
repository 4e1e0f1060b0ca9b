package database

import (
	"fmt"

	"menuperf/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Open connects to the database for the given gorm dialect ("sqlite3" or
// "postgres") and migrates the engine's tables.
func Open(dialect, url string) (*gorm.DB, error) {
	db, err := gorm.Open(dialect, url)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == "sqlite3" {
		// SQLite serializes writers anyway; one connection also keeps
		// ":memory:" databases shared across calls.
		db.DB().SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the engine reads or writes
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MenuItem{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.Integration{},
		&models.SalesRecord{},
		&models.Recommendation{},
	).Error
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// OpenMemory opens a migrated in-memory SQLite database
func OpenMemory() (*gorm.DB, error) {
	return Open("sqlite3", ":memory:")
}

// IsPostgres reports whether db talks to PostgreSQL
func IsPostgres(db *gorm.DB) bool {
	return db.Dialect().GetName() == "postgres"
}
