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

// ListTagsHandler handles GET requests for a paginated page of tags.
func ListTagsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	tags, totalCount, err := database.GetTags(page)
	if err != nil {
		logger.Error("ListTagsHandler: Error fetching tags: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tags", "")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{
		Meta: models.ListMeta{Page: page.Meta(totalCount)},
		Data: tags,
	})
}

// createTagPayload defines the expected structure for creating a tag.
type createTagPayload struct {
	Text string `json:"text"`
}

// CreateTagHandler handles POST requests to create a new tag. Tag text is
// unique case-insensitively; posting an existing text returns the existing
// tag with 200 instead of 201.
func CreateTagHandler(w http.ResponseWriter, r *http.Request) {
	var payload createTagPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("CreateTagHandler: Error decoding request body: %v", err)
		writeAPIError(w, http.StatusBadRequest, "Invalid Request Body", err.Error(), "")
		return
	}
	defer r.Body.Close()

	payload.Text = strings.TrimSpace(payload.Text)
	if payload.Text == "" {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "is not allowed to be empty", "body.text")
		return
	}
	if len(payload.Text) > 140 {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute",
			"length must be less than or equal to 140 characters long", "body.text")
		return
	}

	tag, created, err := database.CreateTag(models.Tag{Text: payload.Text})
	if err != nil {
		logger.Error("CreateTagHandler: Error creating tag '%s': %v", payload.Text, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create tag", "")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, dataEnvelope{Data: tag})
	logger.Info("CreateTagHandler: Served tag ID %d ('%s', created=%t).", tag.ID, tag.Text, created)
}

// GetTagByIDHandler handles GET requests for a single tag.
func GetTagByIDHandler(w http.ResponseWriter, r *http.Request) {
	tagID, err := parsePathID(chi.URLParam(r, "tagID"), "tag")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.tagId")
		return
	}

	tag, err := database.GetTagByID(tagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetTagByIDHandler: Error fetching tag %d: %v", tagID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tag", "")
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: tag})
}

// DeleteTagHandler handles DELETE requests to remove a tag. The logs that
// carried the tag are untouched.
func DeleteTagHandler(w http.ResponseWriter, r *http.Request) {
	tagID, err := parsePathID(chi.URLParam(r, "tagID"), "tag")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.tagId")
		return
	}

	if err := database.DeleteTag(tagID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("DeleteTagHandler: Error deleting tag %d: %v", tagID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete tag", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLogsForTagHandler handles GET requests for the logs carrying one tag.
func ListLogsForTagHandler(w http.ResponseWriter, r *http.Request) {
	tagID, err := parsePathID(chi.URLParam(r, "tagID"), "tag")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.tagId")
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	logs, totalCount, err := database.GetLogsForTag(tagID, page)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("ListLogsForTagHandler: Error fetching logs for tag %d: %v", tagID, err)
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
