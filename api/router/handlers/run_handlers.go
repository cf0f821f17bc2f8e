package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"logbook/database"
	"logbook/logger"
	"logbook/models"
	"logbook/query"

	"github.com/go-chi/chi/v5"
)

// ListRunsHandler handles GET requests for a sorted, paginated page of runs.
func ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	sortKeys, err := parseSortKeys(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}
	sortSpec, err := query.ResolveRunSort(sortKeys)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	runs, totalCount, err := database.GetRuns(sortSpec, page)
	if err != nil {
		logger.Error("ListRunsHandler: Error fetching runs: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve runs", "")
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{
		Meta: models.ListMeta{Page: page.Meta(totalCount)},
		Data: runs,
	})
}

// createRunPayload defines the expected structure for registering a run.
type createRunPayload struct {
	RunNumber      int64      `json:"runNumber"`
	NDetectors     int64      `json:"nDetectors"`
	NEpns          int64      `json:"nEpns"`
	NFlps          int64      `json:"nFlps"`
	NSubtimeframes int64      `json:"nSubtimeframes"`
	BytesReadOut   int64      `json:"bytesReadOut"`
	RunQuality     string     `json:"runQuality"`
	RunType        string     `json:"runType"`
	TimeO2Start    *time.Time `json:"timeO2Start"`
	TimeO2End      *time.Time `json:"timeO2End"`
	TimeTrgStart   *time.Time `json:"timeTrgStart"`
	TimeTrgEnd     *time.Time `json:"timeTrgEnd"`
}

// CreateRunHandler handles POST requests to register a run. Runs are
// immutable; a duplicate run number is a conflict.
func CreateRunHandler(w http.ResponseWriter, r *http.Request) {
	var payload createRunPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("CreateRunHandler: Error decoding request body: %v", err)
		writeAPIError(w, http.StatusBadRequest, "Invalid Request Body", err.Error(), "")
		return
	}
	defer r.Body.Close()

	if payload.RunNumber < 1 {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "body.runNumber")
		return
	}
	if payload.RunQuality == "" {
		payload.RunQuality = models.RunQualityUnknown
	}
	if !models.ValidRunQuality(payload.RunQuality) {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be one of [good, bad, unknown]", "body.runQuality")
		return
	}
	if payload.RunType == "" {
		payload.RunType = models.RunTypeTechnical
	}
	if !models.ValidRunType(payload.RunType) {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be one of [physics, cosmics, technical]", "body.runType")
		return
	}

	run := models.Run{
		RunNumber:      payload.RunNumber,
		NDetectors:     payload.NDetectors,
		NEpns:          payload.NEpns,
		NFlps:          payload.NFlps,
		NSubtimeframes: payload.NSubtimeframes,
		BytesReadOut:   payload.BytesReadOut,
		RunQuality:     payload.RunQuality,
		RunType:        payload.RunType,
		TimeO2Start:    payload.TimeO2Start,
		TimeO2End:      payload.TimeO2End,
		TimeTrgStart:   payload.TimeTrgStart,
		TimeTrgEnd:     payload.TimeTrgEnd,
	}
	created, err := database.CreateRun(run)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.run_number") {
			writeAPIError(w, http.StatusConflict, "Conflict",
				"a run with this run number already exists", "body.runNumber")
			return
		}
		logger.Error("CreateRunHandler: Error creating run %d: %v", payload.RunNumber, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create run", "")
		return
	}

	writeJSON(w, http.StatusCreated, dataEnvelope{Data: created})
	logger.Info("CreateRunHandler: Created run ID %d (run number %d).", created.ID, created.RunNumber)
}

// GetRunByIDHandler handles GET requests for a single run.
func GetRunByIDHandler(w http.ResponseWriter, r *http.Request) {
	runID, err := parsePathID(chi.URLParam(r, "runID"), "run")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.runId")
		return
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetRunByIDHandler: Error fetching run %d: %v", runID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve run", "")
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: run})
}

// ListLogsForRunHandler handles GET requests for the logs referring to one
// run.
func ListLogsForRunHandler(w http.ResponseWriter, r *http.Request) {
	runID, err := parsePathID(chi.URLParam(r, "runID"), "run")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.runId")
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	logs, totalCount, err := database.GetLogsForRun(runID, page)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("ListLogsForRunHandler: Error fetching logs for run %d: %v", runID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve logs", "")
		return
	}
	if logs == nil {
		logs = []models.Log{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{
		Meta: models.ListMeta{Page: page.Meta(totalCount)},
		Data: logs,
	})
}
