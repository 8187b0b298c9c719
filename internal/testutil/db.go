package testutil

import (
	"testing"

	"agency-backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an in-memory sqlite database with the full schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Order{},
		&model.CheckoutDraft{},
		&model.Package{},
		&model.PackageDuration{},
		&model.Addon{},
		&model.Template{},
		&model.PromoCode{},
		&model.WebsiteSetting{},
		&model.IntegrationSecret{},
		&model.WebhookEvent{},
		&model.AuditLog{},
		&model.UserRole{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return db
}
