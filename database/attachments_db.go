package database

import (
	"database/sql"
	"errors"
	"fmt"

	"logbook/logger"
	"logbook/models"
)

// CreateAttachment records the metadata of an uploaded file. The blob
// itself is already on disk under StorageName when this runs.
func CreateAttachment(attachment models.Attachment) (models.Attachment, error) {
	if _, err := GetLogByID(attachment.LogID); err != nil {
		return models.Attachment{}, err
	}

	stmt, err := DB.Prepare("INSERT INTO attachments (log_id, file_name, mime_type, size, storage_name) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		logger.Error("CreateAttachment: Error preparing statement: %v", err)
		return models.Attachment{}, fmt.Errorf("preparing insert attachment statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(attachment.LogID, attachment.FileName, models.NullString(attachment.MimeType), attachment.Size, attachment.StorageName)
	if err != nil {
		logger.Error("CreateAttachment: Error executing insert for log %d: %v", attachment.LogID, err)
		return models.Attachment{}, fmt.Errorf("executing insert attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("getting last insert ID for attachment: %w", err)
	}
	logger.Info("CreateAttachment: Recorded attachment ID %d ('%s') for log %d.", id, attachment.FileName, attachment.LogID)
	return GetAttachmentByID(id)
}

// GetAttachmentByID retrieves a single attachment's metadata.
func GetAttachmentByID(id int64) (models.Attachment, error) {
	var attachment models.Attachment
	var mimeType sql.NullString
	err := DB.QueryRow("SELECT id, log_id, file_name, mime_type, size, storage_name, created_at FROM attachments WHERE id = ?", id).Scan(
		&attachment.ID, &attachment.LogID, &attachment.FileName, &mimeType, &attachment.Size, &attachment.StorageName, &attachment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attachment, fmt.Errorf("attachment with ID %d not found: %w", id, sql.ErrNoRows)
		}
		logger.Error("GetAttachmentByID: Error querying attachment ID %d: %v", id, err)
		return attachment, fmt.Errorf("querying attachment ID %d: %w", id, err)
	}
	attachment.MimeType = mimeType.String
	return attachment, nil
}

// GetAttachmentsForLog retrieves all attachments of one log entry.
func GetAttachmentsForLog(logID int64) ([]models.Attachment, error) {
	rows, err := DB.Query("SELECT id, log_id, file_name, mime_type, size, storage_name, created_at FROM attachments WHERE log_id = ? ORDER BY id ASC", logID)
	if err != nil {
		logger.Error("GetAttachmentsForLog: Error querying attachments for log %d: %v", logID, err)
		return nil, fmt.Errorf("querying attachments for log %d: %w", logID, err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var attachment models.Attachment
		var mimeType sql.NullString
		if err := rows.Scan(&attachment.ID, &attachment.LogID, &attachment.FileName, &mimeType, &attachment.Size, &attachment.StorageName, &attachment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning attachment row for log %d: %w", logID, err)
		}
		attachment.MimeType = mimeType.String
		attachments = append(attachments, attachment)
	}
	return attachments, rows.Err()
}
