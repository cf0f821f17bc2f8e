package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterSubsystemRoutes sets up the routes for subsystem management.
func RegisterSubsystemRoutes(r chi.Router) {
	r.Route("/subsystems", func(subRouter chi.Router) {
		subRouter.Get("/", ListSubsystemsHandler)
		subRouter.Post("/", CreateSubsystemHandler)

		subRouter.Route("/{subsystemID}", func(subsystemRouter chi.Router) {
			subsystemRouter.Get("/", GetSubsystemByIDHandler)
			subsystemRouter.Delete("/", DeleteSubsystemHandler)
		})
	})
}
