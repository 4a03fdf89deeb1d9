// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	auditfeature "github.com/purplesmurf1998/crm-api/internal/app/features/audit"
	authfeature "github.com/purplesmurf1998/crm-api/internal/app/features/authentication"
	commsfeature "github.com/purplesmurf1998/crm-api/internal/app/features/communications"
	contactsfeature "github.com/purplesmurf1998/crm-api/internal/app/features/contacts"
	healthfeature "github.com/purplesmurf1998/crm-api/internal/app/features/health"
	portfoliosfeature "github.com/purplesmurf1998/crm-api/internal/app/features/portfolios"
	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	userstore "github.com/purplesmurf1998/crm-api/internal/app/store/users"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auditlog"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/app/system/metrics"
	"github.com/purplesmurf1998/crm-api/internal/app/system/ratelimit"
	"github.com/purplesmurf1998/crm-api/internal/app/system/reqlog"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the service.
//
// Public routes: /health, /metrics (when enabled) and the auth endpoints
// that hand out or clear tokens. Everything else under the API prefix
// sits behind auth.Middleware.Protect; /audit is admin only.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokens(tokenConfig(coreCfg, appCfg))
	if err != nil {
		return nil, err
	}

	db := deps.MongoDatabase
	mw := auth.NewMiddleware(tokens, userstore.New(db), logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(reqlog.RequestID)
	if coreCfg.Env == "dev" {
		r.Use(reqlog.Logger(logger))
	}
	if appCfg.MetricsEnabled {
		m := metrics.New()
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, logger, apperr.NotFound("Route %s not found", req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, logger, apperr.BadRequest("Method %s not allowed on %s", req.Method, req.URL.Path))
	})

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth: appCfg.AuditAuth,
		Data: appCfg.AuditData,
	})

	r.Route(appCfg.APIPrefix, func(api chi.Router) {
		authHandler := authfeature.NewHandler(db, tokens, logger)
		authHandler.Guard = ratelimit.NewLoginGuard(ratelimit.LoginConfig{
			PerIP:    appCfg.LoginPerIP,
			PerEmail: appCfg.LoginPerEmail,
		})
		authHandler.Audit = audit
		api.Mount("/auth", authfeature.Routes(authHandler, mw))

		portfolios := portfoliosfeature.NewHandler(db, logger)
		portfolios.Audit = audit
		contacts := contactsfeature.NewHandler(db, logger)
		contacts.Audit = audit
		comms := commsfeature.NewHandler(db, logger)
		comms.Audit = audit

		api.Group(func(pr chi.Router) {
			pr.Use(mw.Protect)
			pr.Mount("/portfolios", portfoliosfeature.Routes(portfolios))
			pr.Mount("/contacts", contactsfeature.Routes(contacts))
			pr.Mount("/communications", commsfeature.Routes(comms))
			pr.With(mw.Authorize(models.RoleAdmin)).Mount("/audit", auditfeature.Routes(auditfeature.NewHandler(db, logger)))
		})
	})

	return r, nil
}

// tokenConfig derives the token settings. Cookies are Secure only in
// production.
func tokenConfig(coreCfg *config.CoreConfig, appCfg AppConfig) auth.TokenConfig {
	return auth.TokenConfig{
		Secret:       appCfg.JWTSecret,
		Expiry:       appCfg.JWTExpire,
		CookieExpiry: appCfg.JWTCookieExpire,
		Secure:       coreCfg.Env == "prod",
		Domain:       appCfg.CookieDomain,
	}
}
