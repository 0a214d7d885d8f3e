package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aliirsyaadn/mindful-death/logging"
	"github.com/aliirsyaadn/mindful-death/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MemoryDSN selects a shared in-memory SQLite database.
const MemoryDSN = "memory"

// Init opens the SQLite database named by dsn.
// "memory" (or an empty DSN) opens a shared in-memory database; anything else is a file path.
func Init(dsn string, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("database")
	gormConfig := &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	}

	target := dsn
	if dsn == MemoryDSN || dsn == "" {
		log.Info("Initializing in-memory SQLite database")
		target = "file::memory:?cache=shared"
	} else {
		log.Info("Initializing file-based SQLite database", zap.String("dsn", dsn))
		if dir := filepath.Dir(dsn); dir != "." && dir != "/" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory '%s': %w", dir, err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(target), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database (DSN: '%s'): %w", dsn, err)
	}

	log.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates the tables backing sessions, user data and goals.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.AssessmentSession{}, &models.UserData{}, &models.Goal{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
