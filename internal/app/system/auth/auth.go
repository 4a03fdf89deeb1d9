package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user resolved by Protect and a "found?" flag.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// WithTestUser injects u into r's context, bypassing token checks.
func WithTestUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(WithUser(r.Context(), u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFetcher loads the user named by a token.
type UserFetcher interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Middleware guards routes with a valid token.
type Middleware struct {
	Tokens *Tokens
	Users  UserFetcher
	Log    *zap.Logger
}

func NewMiddleware(tokens *Tokens, users UserFetcher, log *zap.Logger) *Middleware {
	return &Middleware{Tokens: tokens, Users: users, Log: log}
}

// Protect requires a valid token and loads its user into the context. The
// user is reloaded on every request so deleted accounts lose access at once.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := TokenFromRequest(r)
		if raw == "" {
			respond.Error(w, r, m.Log, apperr.Unauthorized())
			return
		}
		claims, err := m.Tokens.Parse(raw)
		if err != nil {
			respond.Error(w, r, m.Log, apperr.Unauthorized())
			return
		}
		oid, err := primitive.ObjectIDFromHex(claims.ID)
		if err != nil {
			respond.Error(w, r, m.Log, apperr.Unauthorized())
			return
		}
		u, err := m.Users.GetByID(r.Context(), oid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, r, m.Log, apperr.Unauthorized())
			return
		}
		if err != nil {
			respond.Error(w, r, m.Log, err)
			return
		}
		next.ServeHTTP(w, WithTestUser(r, &u))
	})
}

// Authorize allows only users whose role is one of roles. It must run after
// Protect.
func (m *Middleware) Authorize(roles ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, r, m.Log, apperr.Unauthorized())
				return
			}
			if _, has := set[u.Role]; !has {
				respond.Error(w, r, m.Log, apperr.Forbidden(u.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
