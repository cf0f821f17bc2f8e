package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"logbook/core"
	"logbook/database"
	"logbook/logger"
	"logbook/models"
	"logbook/query"

	"github.com/go-chi/chi/v5"
)

// ListLogsHandler handles GET requests for a filtered, sorted, paginated
// page of log entries.
func ListLogsHandler(w http.ResponseWriter, r *http.Request) {
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
	sortSpec, err := query.ResolveLogSort(sortKeys)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	rawFilter, err := parseLogFilter(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}
	filter, err := query.CompileLogFilter(rawFilter)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	logs, totalCount, err := database.GetLogs(filter, sortSpec, page)
	if err != nil {
		logger.Error("ListLogsHandler: Error fetching logs: %v", err)
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

// createLogPayload defines the expected structure for creating a log entry.
type createLogPayload struct {
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Origin      string  `json:"origin"`
	Subtype     string  `json:"subtype"`
	UserID      *int64  `json:"userId"`
	ParentLogID *int64  `json:"parentLogId"`
	TagIDs      []int64 `json:"tagIds"`
	RunNumbers  []int64 `json:"runNumbers"`
}

// CreateLogHandler handles POST requests to create a new log entry or a
// reply to an existing one.
func CreateLogHandler(w http.ResponseWriter, r *http.Request) {
	var payload createLogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("CreateLogHandler: Error decoding request body: %v", err)
		writeAPIError(w, http.StatusBadRequest, "Invalid Request Body", err.Error(), "")
		return
	}
	defer r.Body.Close()

	payload.Title = strings.TrimSpace(payload.Title)
	if len(payload.Title) < 3 || len(payload.Title) > 140 {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute",
			"title length must be between 3 and 140 characters long", "body.title")
		return
	}
	if len(payload.Text) < 3 {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute",
			"text length must be at least 3 characters long", "body.text")
		return
	}
	if payload.Origin == "" {
		payload.Origin = models.OriginHuman
	}
	if !models.ValidOrigin(payload.Origin) {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be one of [human, process]", "body.origin")
		return
	}
	if payload.Subtype == "" {
		payload.Subtype = models.SubtypeComment
	}
	if !models.ValidSubtype(payload.Subtype) {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute",
			"must be one of [run, subsystem, announcement, intervention, comment]", "body.subtype")
		return
	}
	if payload.ParentLogID != nil && *payload.ParentLogID < 1 {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "body.parentLogId")
		return
	}

	userID := int64(models.AnonymousUserID)
	if payload.UserID != nil {
		userID = *payload.UserID
		if _, err := database.GetUserByID(userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "refers to an unknown user", "body.userId")
				return
			}
			logger.Error("CreateLogHandler: Error checking user %d: %v", userID, err)
			writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create log", "")
			return
		}
	}

	log := models.Log{
		Title:       payload.Title,
		Text:        payload.Text,
		Origin:      payload.Origin,
		Subtype:     payload.Subtype,
		UserID:      userID,
		ParentLogID: payload.ParentLogID,
	}
	created, err := database.CreateLog(log, payload.TagIDs, payload.RunNumbers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", err.Error(), "body.parentLogId")
			return
		}
		logger.Error("CreateLogHandler: Error creating log: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create log", "")
		return
	}

	writeJSON(w, http.StatusCreated, dataEnvelope{Data: created})
	logger.Info("CreateLogHandler: Created log ID %d ('%s').", created.ID, created.Title)
}

// GetLogByIDHandler handles GET requests for a single log entry.
func GetLogByIDHandler(w http.ResponseWriter, r *http.Request) {
	logID, err := parsePathID(chi.URLParam(r, "logID"), "log")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.logId")
		return
	}

	log, err := database.GetLogByID(logID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetLogByIDHandler: Error fetching log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve log", "")
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: log})
}

// GetLogTreeHandler handles GET requests for the full reply tree a log
// entry belongs to. The tree is always rooted at the log's thread root,
// whichever member of the thread was asked for.
func GetLogTreeHandler(w http.ResponseWriter, r *http.Request) {
	logID, err := parsePathID(chi.URLParam(r, "logID"), "log")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.logId")
		return
	}

	log, err := database.GetLogByID(logID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetLogTreeHandler: Error fetching log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve log", "")
		return
	}

	family, err := database.GetLogFamily(log.RootLogID)
	if err != nil {
		logger.Error("GetLogTreeHandler: Error fetching family of root %d: %v", log.RootLogID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve log tree", "")
		return
	}

	tree, err := core.AssembleLogTree(family, log.RootLogID)
	if err != nil {
		handleQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: tree})
}

// ListLogTagsHandler handles GET requests for the tags of one log entry.
func ListLogTagsHandler(w http.ResponseWriter, r *http.Request) {
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
		logger.Error("ListLogTagsHandler: Error fetching log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve log", "")
		return
	}

	tags, err := database.GetTagsForLog(logID)
	if err != nil {
		logger.Error("ListLogTagsHandler: Error fetching tags for log %d: %v", logID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tags", "")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: tags})
}
