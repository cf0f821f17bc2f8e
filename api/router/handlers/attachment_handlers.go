package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"logbook/config"
	"logbook/database"
	"logbook/logger"
	"logbook/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxAttachmentSize caps uploads at 32 MiB.
const maxAttachmentSize = 32 << 20

// CreateAttachmentHandler handles multipart POST requests to attach a file
// to a log entry. The blob is stored under a generated UUID name so
// uploads with colliding or hostile file names cannot clash on disk.
func CreateAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	logID, err := parsePathID(chi.URLParam(r, "logID"), "log")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.logId")
		return
	}

	if _, err := database.GetLogByID(logID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("CreateAttachmentHandler: Error fetching log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve log", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Request Body", "expected a multipart form with a 'file' part", "body.file")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Request Body", "expected a multipart form with a 'file' part", "body.file")
		return
	}
	defer file.Close()

	storageName := uuid.New().String()
	if ext := filepath.Ext(header.Filename); ext != "" && len(ext) <= 16 {
		storageName += ext
	}
	storagePath := filepath.Join(config.AppConfig.Attachments.Dir, storageName)

	dst, err := os.OpenFile(storagePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		logger.Error("CreateAttachmentHandler: Error creating blob file %s: %v", storagePath, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store attachment", "")
		return
	}
	size, err := io.Copy(dst, file)
	dst.Close()
	if err != nil {
		os.Remove(storagePath)
		logger.Error("CreateAttachmentHandler: Error writing blob file %s: %v", storagePath, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store attachment", "")
		return
	}

	attachment := models.Attachment{
		LogID:       logID,
		FileName:    filepath.Base(header.Filename),
		MimeType:    header.Header.Get("Content-Type"),
		Size:        size,
		StorageName: storageName,
	}
	created, err := database.CreateAttachment(attachment)
	if err != nil {
		os.Remove(storagePath)
		logger.Error("CreateAttachmentHandler: Error recording attachment for log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store attachment", "")
		return
	}

	writeJSON(w, http.StatusCreated, dataEnvelope{Data: created})
	logger.Info("CreateAttachmentHandler: Stored attachment ID %d ('%s', %d bytes) for log %d.",
		created.ID, created.FileName, created.Size, logID)
}

// ListLogAttachmentsHandler handles GET requests for the attachments of one
// log entry.
func ListLogAttachmentsHandler(w http.ResponseWriter, r *http.Request) {
	logID, err := parsePathID(chi.URLParam(r, "logID"), "log")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.logId")
		return
	}

	if _, err := database.GetLogByID(logID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("ListLogAttachmentsHandler: Error fetching log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve log", "")
		return
	}

	attachments, err := database.GetAttachmentsForLog(logID)
	if err != nil {
		logger.Error("ListLogAttachmentsHandler: Error fetching attachments for log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve attachments", "")
		return
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: attachments})
}

// GetAttachmentByIDHandler handles GET requests for an attachment's
// metadata.
func GetAttachmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := parsePathID(chi.URLParam(r, "attachmentID"), "attachment")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.attachmentId")
		return
	}

	attachment, err := database.GetAttachmentByID(attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetAttachmentByIDHandler: Error fetching attachment %d: %v", attachmentID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve attachment", "")
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: attachment})
}

// DownloadAttachmentHandler handles GET requests for an attachment's blob.
func DownloadAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := parsePathID(chi.URLParam(r, "attachmentID"), "attachment")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.attachmentId")
		return
	}

	attachment, err := database.GetAttachmentByID(attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("DownloadAttachmentHandler: Error fetching attachment %d: %v", attachmentID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve attachment", "")
		return
	}

	storagePath := filepath.Join(config.AppConfig.Attachments.Dir, attachment.StorageName)
	f, err := os.Open(storagePath)
	if err != nil {
		logger.Error("DownloadAttachmentHandler: Blob for attachment %d missing at %s: %v", attachmentID, storagePath, err)
		writeAPIError(w, http.StatusInternalServerError, "Data Integrity Violation",
			fmt.Sprintf("blob for attachment %d is missing from storage", attachmentID), "")
		return
	}
	defer f.Close()

	if attachment.MimeType != "" {
		w.Header().Set("Content-Type", attachment.MimeType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	http.ServeContent(w, r, attachment.FileName, attachment.CreatedAt, f)
}
