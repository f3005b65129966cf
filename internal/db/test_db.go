package db

import (
	"fmt"

	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// joinTables are the many2many tables AutoMigrate creates implicitly.
var joinTables = []string{"products_tags", "users_groups"}

// SetupTestDB creates a migrated in-memory SQLite database for testing.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// every pooled connection to :memory: would otherwise see its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get test DB instance", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close test DB", err)
	}
}

// TruncateAllTables removes all rows, join tables first and then models in
// reverse migration order. The seeded groups are restored afterwards.
func TruncateAllTables(db *gorm.DB) error {
	for _, table := range joinTables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}

	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(models[i]).Error; err != nil {
			return err
		}
	}
	return seedGroups(db)
}
