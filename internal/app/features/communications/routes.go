// internal/app/features/communications/routes.go
package communications

import "github.com/go-chi/chi/v5"

// Routes mounts the communication endpoints (typically under
// "/communications"). The caller is expected to have applied authentication.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{commId}", func(pr chi.Router) {
		pr.Get("/", h.ServeView)
		pr.Put("/", h.HandleEdit)
		pr.Delete("/", h.HandleDelete)

		pr.Post("/contacts/cpId/{cpId}", h.HandleAttach)
		pr.Delete("/contacts/cpId/{cpId}", h.HandleDetach)
	})

	return r
}
