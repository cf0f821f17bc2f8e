package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterVersionRoutes sets up the version route.
func RegisterVersionRoutes(r chi.Router) {
	r.Get("/version", GetVersionHandler)
}
