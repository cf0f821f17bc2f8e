package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterUserRoutes sets up the routes for user lookup.
func RegisterUserRoutes(r chi.Router) {
	r.Route("/users", func(subRouter chi.Router) {
		subRouter.Get("/", ListUsersHandler)
		subRouter.Get("/{userID}", GetUserByIDHandler)
	})
}
