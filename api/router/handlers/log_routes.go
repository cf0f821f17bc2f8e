package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterLogRoutes sets up the routes for log entry management.
func RegisterLogRoutes(r chi.Router) {
	r.Route("/logs", func(subRouter chi.Router) {
		subRouter.Get("/", ListLogsHandler)
		subRouter.Post("/", CreateLogHandler)

		subRouter.Route("/{logID}", func(logRouter chi.Router) {
			logRouter.Get("/", GetLogByIDHandler)
			logRouter.Get("/tree", GetLogTreeHandler)
			logRouter.Get("/tags", ListLogTagsHandler)
			logRouter.Get("/attachments", ListLogAttachmentsHandler)
			logRouter.Post("/attachments", CreateAttachmentHandler)
		})
	})
}
