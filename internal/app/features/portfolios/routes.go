// internal/app/features/portfolios/routes.go
package portfolios

import "github.com/go-chi/chi/v5"

// Routes mounts the portfolio endpoints (typically under "/portfolios").
// The caller is expected to have applied authentication.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{portId}", func(pr chi.Router) {
		pr.Get("/", h.ServeView)
		pr.Put("/", h.HandleEdit)
		pr.Delete("/", h.HandleDelete)

		pr.Get("/contacts", h.ServeContacts)
		pr.Post("/contacts/{contactId}", h.HandleAttachContact)
		pr.Put("/contacts/{contactId}", h.HandleEditContact)
	})

	return r
}
