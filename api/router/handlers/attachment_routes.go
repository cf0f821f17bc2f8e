package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterAttachmentRoutes sets up the routes for attachment metadata and
// download. Upload and per-log listing live under /logs/{logID}/attachments.
func RegisterAttachmentRoutes(r chi.Router) {
	r.Route("/attachments/{attachmentID}", func(attachmentRouter chi.Router) {
		attachmentRouter.Get("/", GetAttachmentByIDHandler)
		attachmentRouter.Get("/file", DownloadAttachmentHandler)
	})
}
