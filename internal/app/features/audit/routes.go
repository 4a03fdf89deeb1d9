// internal/app/features/audit/routes.go
package audit

import "github.com/go-chi/chi/v5"

// Routes mounts the audit listing (typically under "/audit"). The caller
// is expected to restrict it to admins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
