package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRunRoutes sets up the routes for run bookkeeping.
func RegisterRunRoutes(r chi.Router) {
	r.Route("/runs", func(subRouter chi.Router) {
		subRouter.Get("/", ListRunsHandler)
		subRouter.Post("/", CreateRunHandler)

		subRouter.Route("/{runID}", func(runRouter chi.Router) {
			runRouter.Get("/", GetRunByIDHandler)
			runRouter.Get("/logs", ListLogsForRunHandler)
		})
	})
}
