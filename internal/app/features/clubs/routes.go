// internal/app/features/clubs/routes.go
package clubs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the club endpoints, typically at /api/clubs. Reads are
// public; mutations go through requireAdmin.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(requireAdmin)
		pr.Patch("/{id}", h.HandlePatch)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
	})
	return r
}

// AdminRoutes mounts the admin club list, typically at /api/admin/clubs.
func AdminRoutes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAdmin)
	r.Get("/", h.ServeAdminList)
	return r
}
