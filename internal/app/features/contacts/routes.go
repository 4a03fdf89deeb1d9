// internal/app/features/contacts/routes.go
package contacts

import "github.com/go-chi/chi/v5"

// Routes mounts the contact endpoints (typically under "/contacts").
// The caller is expected to have applied authentication.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/portfolios", h.ServeMemberships)

	r.Get("/{contactId}", h.ServeView)
	r.Put("/{contactId}", h.HandleEdit)
	r.Delete("/{contactId}", h.HandleDelete)

	return r
}
