package storage

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"photocheck-server-go/internal/platform/errors"
	"photocheck-server-go/internal/platform/storage/migrations"
)

// Global database instance shared by repositories.
var db *gorm.DB

// InitDatabase opens the SQLite database under dir and applies migrations.
func InitDatabase(dir string) error {
	if db != nil {
		return nil
	}

	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.KindStorage, "storage.init", "failed to create data directory", err)
	}

	dbPath := filepath.Join(dir, "photocheck.db")

	var err error
	db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.Wrap(errors.KindStorage, "storage.init", "failed to open database", err)
	}

	if err := db.AutoMigrate(&ReportRecord{}); err != nil {
		return errors.Wrap(errors.KindStorage, "storage.init", "failed to migrate database", err)
	}

	manager := NewMigrationManager(db)
	manager.AddMigration(&migrations.Migration001Initial{})
	if err := manager.RunMigrations(); err != nil {
		return errors.Wrap(errors.KindStorage, "storage.init", "failed to run migrations", err)
	}

	return nil
}

// GetDB returns the global database instance.
func GetDB() *gorm.DB {
	if db == nil {
		panic("database not initialized, call InitDatabase() first")
	}
	return db
}
