// Package testutil provides in-memory database setup, fixtures, and
// assertion helpers shared by the service tests.
package testutil

import (
	"testing"

	"finsight/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels mirrors the SQL migrations for sqlite auto-migration.
var allModels = []interface{}{
	&models.User{},
	&models.Account{},
	&models.Transaction{},
	&models.BudgetCategory{},
	&models.CategoryMapping{},
	&models.BusinessEntity{},
	&models.BusinessMetric{},
	&models.Investment{},
	&models.AuditLog{},
}

// SetupTestDB opens an in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the connection behind the GORM handle.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
