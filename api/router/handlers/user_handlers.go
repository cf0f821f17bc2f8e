package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"logbook/database"
	"logbook/logger"
	"logbook/models"

	"github.com/go-chi/chi/v5"
)

// ListUsersHandler handles GET requests for a paginated page of users.
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r)
	if err != nil {
		handleQueryError(w, err)
		return
	}

	users, totalCount, err := database.GetUsers(page)
	if err != nil {
		logger.Error("ListUsersHandler: Error fetching users: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve users", "")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{
		Meta: models.ListMeta{Page: page.Meta(totalCount)},
		Data: users,
	})
}

// GetUserByIDHandler handles GET requests for a single user.
func GetUserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parsePathID(chi.URLParam(r, "userID"), "user")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid Attribute", "must be a positive integer", "params.userId")
		return
	}

	user, err := database.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAPIError(w, http.StatusNotFound, "Not Found", err.Error(), "")
			return
		}
		logger.Error("GetUserByIDHandler: Error fetching user %d: %v", userID, err)
		writeAPIError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve user", "")
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: user})
}
