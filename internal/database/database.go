package database

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/database/migrations"
	"github.com/secufur/commerce-api/internal/types"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase() (*gorm.DB, error) {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "commerce.db"
	}
	return Open(path)
}

// Open connects to the sqlite database at path and runs all migrations.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := migrations.AddReviews(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := migrations.AddAuditLogs(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Auto-migrate other schemas
	err = db.AutoMigrate(
		&types.User{},
		&types.Address{},
		&types.SellerProfile{},
		&types.Product{},
		&types.Order{},
		&types.OrderItem{},
		&types.Payment{},
		&types.IdempotencyRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
