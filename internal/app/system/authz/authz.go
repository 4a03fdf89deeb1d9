// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's role, name, id, and a found flag. With
// no user in context it returns "", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.ID.IsZero() {
		return "", "", primitive.NilObjectID, false
	}
	return u.Role, u.Name, u.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	return HasRole(r, models.RoleAdmin)
}
