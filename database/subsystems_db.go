package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"logbook/logger"
	"logbook/models"
	"logbook/query"
)

// CreateSubsystem inserts a new subsystem. Names are unique; creating an
// existing name returns the existing row with created set to false.
func CreateSubsystem(subsystem models.Subsystem) (models.Subsystem, bool, error) {
	subsystem.Name = strings.TrimSpace(subsystem.Name)
	if subsystem.Name == "" {
		return models.Subsystem{}, false, errors.New("subsystem name cannot be empty")
	}

	var existing models.Subsystem
	err := DB.QueryRow("SELECT id, name, created_at, updated_at FROM subsystems WHERE LOWER(name) = LOWER(?)", subsystem.Name).Scan(
		&existing.ID, &existing.Name, &existing.CreatedAt, &existing.UpdatedAt,
	)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("CreateSubsystem: Error checking for existing subsystem '%s': %v", subsystem.Name, err)
		return models.Subsystem{}, false, fmt.Errorf("checking for existing subsystem '%s': %w", subsystem.Name, err)
	}

	result, err := DB.Exec("INSERT INTO subsystems (name) VALUES (?)", subsystem.Name)
	if err != nil {
		logger.Error("CreateSubsystem: Error executing insert for subsystem '%s': %v", subsystem.Name, err)
		return models.Subsystem{}, false, fmt.Errorf("executing insert subsystem: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Subsystem{}, false, fmt.Errorf("getting last insert ID for subsystem: %w", err)
	}

	created, fetchErr := GetSubsystemByID(id)
	if fetchErr != nil {
		subsystem.ID = id
		return subsystem, true, nil
	}
	return created, true, nil
}

// GetSubsystemByID retrieves a single subsystem by its ID.
func GetSubsystemByID(id int64) (models.Subsystem, error) {
	var subsystem models.Subsystem
	err := DB.QueryRow("SELECT id, name, created_at, updated_at FROM subsystems WHERE id = ?", id).Scan(
		&subsystem.ID, &subsystem.Name, &subsystem.CreatedAt, &subsystem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return subsystem, fmt.Errorf("subsystem with ID %d not found: %w", id, sql.ErrNoRows)
		}
		logger.Error("GetSubsystemByID: Error querying subsystem ID %d: %v", id, err)
		return subsystem, fmt.Errorf("querying subsystem ID %d: %w", id, err)
	}
	return subsystem, nil
}

// GetSubsystems retrieves a page of subsystems ordered by name, plus the
// total count.
func GetSubsystems(page query.Pagination) ([]models.Subsystem, int64, error) {
	var totalRecords int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM subsystems").Scan(&totalRecords); err != nil {
		return nil, 0, fmt.Errorf("counting subsystems: %w", err)
	}

	var subsystems []models.Subsystem
	if totalRecords == 0 {
		return subsystems, 0, nil
	}

	rows, err := DB.Query("SELECT id, name, created_at, updated_at FROM subsystems ORDER BY LOWER(name) ASC LIMIT ? OFFSET ?", page.Limit, page.Offset)
	if err != nil {
		logger.Error("GetSubsystems: Error querying subsystems: %v", err)
		return nil, totalRecords, fmt.Errorf("querying subsystems: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subsystem models.Subsystem
		if err := rows.Scan(&subsystem.ID, &subsystem.Name, &subsystem.CreatedAt, &subsystem.UpdatedAt); err != nil {
			return nil, totalRecords, fmt.Errorf("scanning subsystem row: %w", err)
		}
		subsystems = append(subsystems, subsystem)
	}
	return subsystems, totalRecords, rows.Err()
}

// DeleteSubsystem removes a subsystem by its ID.
func DeleteSubsystem(id int64) error {
	result, err := DB.Exec("DELETE FROM subsystems WHERE id = ?", id)
	if err != nil {
		logger.Error("DeleteSubsystem: Error executing delete for subsystem ID %d: %v", id, err)
		return fmt.Errorf("executing delete subsystem: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("subsystem with ID %d not found for deletion: %w", id, sql.ErrNoRows)
	}
	logger.Info("DeleteSubsystem: Subsystem ID %d deleted.", id)
	return nil
}
