package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	role, name, id, ok := UserCtx(r)
	if ok || role != "" || name != "" || !id.IsZero() {
		t.Errorf("UserCtx = %q, %q, %v, %v; want empty", role, name, id, ok)
	}
	if IsAdmin(r) {
		t.Error("IsAdmin true without a user")
	}
}

func TestUserCtx_WithUser(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Name: "Ann", Role: models.RoleAdmin}
	r := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), u)

	role, name, id, ok := UserCtx(r)
	if !ok || role != models.RoleAdmin || name != "Ann" || id != u.ID {
		t.Errorf("UserCtx = %q, %q, %v, %v", role, name, id, ok)
	}
	if !IsAdmin(r) {
		t.Error("IsAdmin false for admin")
	}
	if HasAnyRole(r, models.RoleGuest, models.RoleMaintenance) {
		t.Error("HasAnyRole matched a role the user does not hold")
	}
	if !HasAnyRole(r, models.RoleGuest, models.RoleAdmin) {
		t.Error("HasAnyRole missed the user's role")
	}
}
