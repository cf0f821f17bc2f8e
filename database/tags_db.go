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

// CreateTag inserts a new tag. Tag text is unique case-insensitively; if
// the text is already taken the existing tag is returned with created set
// to false.
func CreateTag(tag models.Tag) (models.Tag, bool, error) {
	if DB == nil {
		return models.Tag{}, false, errors.New("database connection is not initialized")
	}
	tag.Text = strings.TrimSpace(tag.Text)
	if tag.Text == "" {
		return models.Tag{}, false, errors.New("tag text cannot be empty")
	}

	var existingTag models.Tag
	err := DB.QueryRow("SELECT id, text, created_at, updated_at FROM tags WHERE LOWER(text) = LOWER(?)", tag.Text).Scan(
		&existingTag.ID, &existingTag.Text, &existingTag.CreatedAt, &existingTag.UpdatedAt,
	)
	if err == nil {
		logger.Info("CreateTag: Tag with text '%s' already exists (ID: %d).", tag.Text, existingTag.ID)
		return existingTag, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("CreateTag: Error checking for existing tag '%s': %v", tag.Text, err)
		return models.Tag{}, false, fmt.Errorf("checking for existing tag '%s': %w", tag.Text, err)
	}

	stmt, err := DB.Prepare("INSERT INTO tags (text) VALUES (?)")
	if err != nil {
		logger.Error("CreateTag: Error preparing statement for tag '%s': %v", tag.Text, err)
		return models.Tag{}, false, fmt.Errorf("preparing insert tag statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(tag.Text)
	if err != nil {
		logger.Error("CreateTag: Error executing insert for tag '%s': %v", tag.Text, err)
		return models.Tag{}, false, fmt.Errorf("executing insert tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Tag{}, false, fmt.Errorf("getting last insert ID for tag: %w", err)
	}

	createdTag, fetchErr := GetTagByID(id)
	if fetchErr != nil {
		logger.Error("CreateTag: Error fetching newly created tag %d: %v", id, fetchErr)
		tag.ID = id
		return tag, true, nil
	}
	return createdTag, true, nil
}

// GetTagByID retrieves a single tag by its ID.
func GetTagByID(id int64) (models.Tag, error) {
	var tag models.Tag
	err := DB.QueryRow("SELECT id, text, created_at, updated_at FROM tags WHERE id = ?", id).Scan(
		&tag.ID, &tag.Text, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tag, fmt.Errorf("tag with ID %d not found: %w", id, sql.ErrNoRows)
		}
		logger.Error("GetTagByID: Error querying tag ID %d: %v", id, err)
		return tag, fmt.Errorf("querying tag ID %d: %w", id, err)
	}
	return tag, nil
}

// GetTags retrieves a page of tags ordered by text, plus the total count.
func GetTags(page query.Pagination) ([]models.Tag, int64, error) {
	var totalRecords int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM tags").Scan(&totalRecords); err != nil {
		return nil, 0, fmt.Errorf("counting tags: %w", err)
	}

	var tags []models.Tag
	if totalRecords == 0 {
		return tags, 0, nil
	}

	rows, err := DB.Query("SELECT id, text, created_at, updated_at FROM tags ORDER BY LOWER(text) ASC LIMIT ? OFFSET ?", page.Limit, page.Offset)
	if err != nil {
		logger.Error("GetTags: Error querying tags: %v", err)
		return nil, totalRecords, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Text, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, totalRecords, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, totalRecords, rows.Err()
}

// DeleteTag removes a tag. Its log associations are deleted by CASCADE;
// the logs themselves survive.
func DeleteTag(id int64) error {
	stmt, err := DB.Prepare("DELETE FROM tags WHERE id = ?")
	if err != nil {
		logger.Error("DeleteTag: Error preparing statement for tag ID %d: %v", id, err)
		return fmt.Errorf("preparing delete tag statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		logger.Error("DeleteTag: Error executing delete for tag ID %d: %v", id, err)
		return fmt.Errorf("executing delete tag: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("tag with ID %d not found for deletion: %w", id, sql.ErrNoRows)
	}
	logger.Info("DeleteTag: Tag ID %d deleted.", id)
	return nil
}

// AddTagsToLog links the given tags to a log entry. Existing links are
// left alone.
func AddTagsToLog(logID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if _, err := GetTagByID(tagID); err != nil {
			return err
		}
		if _, err := DB.Exec("INSERT OR IGNORE INTO log_tags (log_id, tag_id) VALUES (?, ?)", logID, tagID); err != nil {
			logger.Error("AddTagsToLog: Error linking tag %d to log %d: %v", tagID, logID, err)
			return fmt.Errorf("linking tag %d to log %d: %w", tagID, logID, err)
		}
	}
	return nil
}

// GetTagsForLog retrieves all tags associated with one log entry.
func GetTagsForLog(logID int64) ([]models.Tag, error) {
	rows, err := DB.Query(`
		SELECT t.id, t.text, t.created_at, t.updated_at
		FROM tags t
		JOIN log_tags lt ON t.id = lt.tag_id
		WHERE lt.log_id = ?
		ORDER BY LOWER(t.text) ASC
	`, logID)
	if err != nil {
		logger.Error("GetTagsForLog: Error querying tags for log %d: %v", logID, err)
		return nil, fmt.Errorf("querying tags for log %d: %w", logID, err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Text, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag row for log %d: %w", logID, err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// GetTagsForLogs retrieves the tags of a batch of log entries in one
// query. Returns a map keyed by log id.
func GetTagsForLogs(logIDs []int64) (map[int64][]models.Tag, error) {
	if len(logIDs) == 0 {
		return make(map[int64][]models.Tag), nil
	}

	placeholders := strings.Repeat("?,", len(logIDs)-1) + "?"
	q := fmt.Sprintf(`
		SELECT lt.log_id, t.id, t.text, t.created_at, t.updated_at
		FROM tags t
		JOIN log_tags lt ON t.id = lt.tag_id
		WHERE lt.log_id IN (%s)
		ORDER BY lt.log_id ASC, LOWER(t.text) ASC
	`, placeholders)

	args := make([]interface{}, 0, len(logIDs))
	for _, id := range logIDs {
		args = append(args, id)
	}

	rows, err := DB.Query(q, args...)
	if err != nil {
		logger.Error("GetTagsForLogs: Error querying tags for logs: %v", err)
		return nil, fmt.Errorf("querying tags for multiple logs: %w", err)
	}
	defer rows.Close()

	tagsByLogID := make(map[int64][]models.Tag)
	for rows.Next() {
		var logID int64
		var tag models.Tag
		if err := rows.Scan(&logID, &tag.ID, &tag.Text, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			logger.Error("GetTagsForLogs: Error scanning tag row: %v", err)
			continue
		}
		tagsByLogID[logID] = append(tagsByLogID[logID], tag)
	}
	return tagsByLogID, rows.Err()
}

// GetLogsForTag retrieves a page of logs carrying one tag, newest first.
func GetLogsForTag(tagID int64, page query.Pagination) ([]models.Log, int64, error) {
	if _, err := GetTagByID(tagID); err != nil {
		return nil, 0, err
	}

	var totalRecords int64
	if err := DB.QueryRow("SELECT COUNT(*) FROM log_tags WHERE tag_id = ?", tagID).Scan(&totalRecords); err != nil {
		return nil, 0, fmt.Errorf("counting logs for tag %d: %w", tagID, err)
	}

	var logs []models.Log
	if totalRecords == 0 {
		return logs, 0, nil
	}

	q := fmt.Sprintf(`SELECT %s
		FROM logs l
		JOIN users u ON l.user_id = u.id
		JOIN log_tags lt ON lt.log_id = l.id
		WHERE lt.tag_id = ?
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT ? OFFSET ?`, logSelectColumns)

	rows, err := DB.Query(q, tagID, page.Limit, page.Offset)
	if err != nil {
		logger.Error("GetLogsForTag: Error querying logs for tag %d: %v", tagID, err)
		return nil, totalRecords, fmt.Errorf("querying logs for tag %d: %w", tagID, err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, totalRecords, fmt.Errorf("scanning log row for tag %d: %w", tagID, err)
		}
		logs = append(logs, l)
	}
	return logs, totalRecords, rows.Err()
}
