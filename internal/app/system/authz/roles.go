// internal/app/system/authz/roles.go
package authz

import "net/http"

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == want {
			return true
		}
	}
	return false
}

// HasRole is a convenience wrapper for a single role.
func HasRole(r *http.Request, role string) bool {
	return HasAnyRole(r, role)
}
