// internal/app/features/health/routes.go
package health

import "github.com/go-chi/chi/v5"

// Mount registers /healthz and /health on r.
func Mount(r chi.Router, h *Handler) {
	r.Get("/healthz", h.ServeLiveness)
	r.Get("/health", h.Serve)
}
