// internal/app/features/authentication/routes.go
package authentication

import (
	"github.com/go-chi/chi/v5"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
)

// Routes mounts the auth endpoints (typically under "/auth").
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Get("/logout", h.HandleLogout)
	r.Get("/verify", h.ServeVerify)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.Protect)
		pr.Get("/me", h.ServeMe)

		pr.With(mw.Authorize(models.RoleAdmin)).Get("/users", h.ServeUsers)
	})

	return r
}
