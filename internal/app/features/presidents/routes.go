// internal/app/features/presidents/routes.go
package presidents

import "github.com/go-chi/chi/v5"

// Routes mounts the submission endpoint under /api/presidents.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/submit", h.HandleSubmit)
	return r
}
