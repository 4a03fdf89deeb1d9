package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// SetTokenCookie writes the HTTP-only token cookie.
func (t *Tokens) SetTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   t.cfg.Domain,
		Expires:  t.now().Add(t.cfg.CookieExpiry),
		MaxAge:   int(t.cfg.CookieExpiry / time.Second),
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires the token cookie immediately. Tokens already
// handed out stay valid until they expire.
func (t *Tokens) ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   t.cfg.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the token cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			if tok = strings.TrimSpace(tok); tok != "" {
				return tok
			}
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" && c.Value != "none" {
		return c.Value
	}
	return ""
}
