package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"logbook/database"
	"logbook/logger"
	"logbook/models"

	"github.com/go-chi/chi/v5"
)

// ListSubsystemsHandler handles GET requests for a paginated page of
// subsystems.
func ListSubsystemsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	subsystems, totalCount, err := database.GetSubsystems(page)
	if err != nil {
		logger.Error("ListSubsystemsHandler: Error fetching subsystems: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve subsystems", "")
		return
	}
	if subsystems == nil {
		subsystems = []models.Subsystem{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{
		Meta: models.ListMeta{Page: page.Meta(totalCount)},
		Data: subsystems,
	})
}

// createSubsystemPayload defines the expected structure for registering a
// subsystem.
type createSubsystemPayload struct {
	Name string `json:"name"`
}

// CreateSubsystemHandler handles POST requests to register a subsystem.
// Names are unique; posting an existing name returns the existing row.
func CreateSubsystemHandler(w http.ResponseWriter, r *http.Request) {
	var payload createSubsystemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("CreateSubsystemHandler: Error decoding request body: %v", err)
		writeAPIError(w, http.StatusBadRequest, "Invalid Request Body", err.Error(), "")
		return
	}
	defer r.Body.Close()

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "is not allowed to be empty", "body.name")
		return
	}

	subsystem, created, err := database.CreateSubsystem(models.Subsystem{Name: payload.Name})
	if err != nil {
		logger.Error("CreateSubsystemHandler: Error creating subsystem '%s': %v", payload.Name, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create subsystem", "")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, dataEnvelope{Data: subsystem})
}

// GetSubsystemByIDHandler handles GET requests for a single subsystem.
func GetSubsystemByIDHandler(w http.ResponseWriter, r *http.Request) {
	subsystemID, err := parsePathID(chi.URLParam(r, "subsystemID"), "subsystem")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.subsystemId")
		return
	}

	subsystem, err := database.GetSubsystemByID(subsystemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetSubsystemByIDHandler: Error fetching subsystem %d: %v", subsystemID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve subsystem", "")
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: subsystem})
}

// DeleteSubsystemHandler handles DELETE requests to remove a subsystem.
func DeleteSubsystemHandler(w http.ResponseWriter, r *http.Request) {
	subsystemID, err := parsePathID(chi.URLParam(r, "subsystemID"), "subsystem")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.subsystemId")
		return
	}

	if err := database.DeleteSubsystem(subsystemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("DeleteSubsystemHandler: Error deleting subsystem %d: %v", subsystemID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete subsystem", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
