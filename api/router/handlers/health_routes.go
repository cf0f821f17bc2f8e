package handlers

import (
	"net/http"

	"logbook/database"
	"logbook/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterHealthRoutes sets up the service status route.
func RegisterHealthRoutes(r chi.Router) {
	r.Get("/status", statusHandler)
}

// statusHandler reports whether the service and its database are usable.
func statusHandler(w http.ResponseWriter, r *http.Request) {
	if err := database.DB.Ping(); err != nil {
		logger.Error("statusHandler: Database ping failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"ok": false, "database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "database": "ok"})
}
