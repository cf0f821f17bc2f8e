package database

import (
	"database/sql"
	"errors"
	"fmt"

	"logbook/logger"
	"logbook/models"
	"logbook/query"
)

// GetUserByID retrieves a single user by its ID.
func GetUserByID(id int64) (models.User, error) {
	var user models.User
	err := DB.QueryRow("SELECT id, name, created_at FROM users WHERE id = ?", id).Scan(
		&user.ID, &user.Name, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, fmt.Errorf("user with ID %d not found: %w", id, sql.ErrNoRows)
		}
		logger.Error("GetUserByID: Error querying user ID %d: %v", id, err)
		return user, fmt.Errorf("querying user ID %d: %w", id, err)
	}
	return user, nil
}

// GetUsers retrieves a page of users ordered by name, plus the total count.
func GetUsers(page query.Pagination) ([]models.User, int64, error) {
	var totalRecords int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&totalRecords); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	var users []models.User
	if totalRecords == 0 {
		return users, 0, nil
	}

	rows, err := DB.Query("SELECT id, name, created_at FROM users ORDER BY LOWER(name) ASC LIMIT ? OFFSET ?", page.Limit, page.Offset)
	if err != nil {
		logger.Error("GetUsers: Error querying users: %v", err)
		return nil, totalRecords, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, totalRecords, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, user)
	}
	return users, totalRecords, rows.Err()
}
