package api

import (
	"net/http"
	"time"

	"logbook/api/router/handlers"
	"logbook/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the API router. All registered paths
// are relative to the /api base path.
func NewRouter() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(accessLogMiddleware)
	router.Use(middleware.Recoverer)

	handlers.RegisterHealthRoutes(router)
	handlers.RegisterVersionRoutes(router)
	handlers.RegisterLogRoutes(router)
	handlers.RegisterTagRoutes(router)
	handlers.RegisterRunRoutes(router)
	handlers.RegisterSubsystemRoutes(router)
	handlers.RegisterUserRoutes(router)
	handlers.RegisterAttachmentRoutes(router)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Error("API SUB-ROUTER CATCH-ALL: Unhandled route relative to /api: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return router
}

// accessLogMiddleware writes one line per request to the access log.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Access("%s %s %s %d %dB %s", r.RemoteAddr, r.Method, r.URL.RequestURI(), ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
