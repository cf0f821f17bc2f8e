package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"logbook/logger"
	"logbook/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

func InitDB(dataSourceName string) error {
	var err error
	dbDir := filepath.Dir(dataSourceName)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			logger.Error("Failed to create database directory %s: %v", dbDir, err)
			return fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	DB, err = sql.Open("sqlite3", dataSourceName+"?_foreign_keys=on")
	if err != nil {
		logger.Error("Failed to open database: %v", err)
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err = DB.Ping(); err != nil {
		logger.Error("Failed to connect to database: %v", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	migrationsPath := "file://database/migrations"
	m, err := migrate.New(
		migrationsPath,
		fmt.Sprintf("sqlite3://%s", dataSourceName+"?_foreign_keys=on"),
	)
	if err != nil {
		logger.Error("Failed to initialize migrations: %v (path: %s)", err, migrationsPath)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	logger.Info("Applying database migrations...")
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations: %v", err)
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully (or no changes).")
	return seedInitialUsers()
}

// seedInitialUsers makes sure the two built-in authors exist: the fallback
// for unattributed operator entries and the author automated processes
// post under. Their ids are fixed so handlers can refer to them.
func seedInitialUsers() error {
	users := map[int64]string{
		models.AnonymousUserID: "Anonymous",
		models.ProcessUserID:   "Process",
	}
	for id, name := range users {
		if _, err := DB.Exec("INSERT OR IGNORE INTO users (id, name) VALUES (?, ?)", id, name); err != nil {
			return fmt.Errorf("seeding user '%s': %w", name, err)
		}
	}
	logger.Info("Initial users seeding attempted.")
	return nil
}
