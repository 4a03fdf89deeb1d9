// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
)

// Window counts hits per key in fixed windows. It is safe for concurrent use.
type Window struct {
	mu     sync.Mutex
	hits   map[string]*bucket
	limit  int
	period time.Duration
	swept  time.Time
	now    func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewWindow allows limit hits per key in every period.
func NewWindow(limit int, period time.Duration) *Window {
	return &Window{
		hits:   make(map[string]*bucket),
		limit:  limit,
		period: period,
		now:    time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (w *Window) Allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.swept) >= 2*w.period {
		w.sweep(now)
	}
	b, ok := w.hits[key]
	if !ok || !now.Before(b.resetAt) {
		w.hits[key] = &bucket{count: 1, resetAt: now.Add(w.period)}
		return true
	}
	if b.count >= w.limit {
		return false
	}
	b.count++
	return true
}

// Remaining reports how many hits key has left in its current window.
func (w *Window) Remaining(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, ok := w.hits[key]
	if !ok || !w.now().Before(b.resetAt) {
		return w.limit
	}
	return max(w.limit-b.count, 0)
}

// Reset forgets key.
func (w *Window) Reset(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.hits, key)
}

// sweep drops expired buckets. The caller holds w.mu.
func (w *Window) sweep(now time.Time) {
	for k, b := range w.hits {
		if !now.Before(b.resetAt) {
			delete(w.hits, k)
		}
	}
	w.swept = now
}

// ClientIP returns the caller address, preferring X-Forwarded-For and
// X-Real-IP over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginConfig sets the login attempt budgets. Zero values fall back to 10
// attempts per IP per minute and 5 per email per 5 minutes.
type LoginConfig struct {
	PerIP       int
	IPPeriod    time.Duration
	PerEmail    int
	EmailPeriod time.Duration
}

// LoginGuard throttles login attempts by client IP and by email.
type LoginGuard struct {
	byIP    *Window
	byEmail *Window
}

func NewLoginGuard(cfg LoginConfig) *LoginGuard {
	if cfg.PerIP <= 0 {
		cfg.PerIP = 10
	}
	if cfg.IPPeriod <= 0 {
		cfg.IPPeriod = time.Minute
	}
	if cfg.PerEmail <= 0 {
		cfg.PerEmail = 5
	}
	if cfg.EmailPeriod <= 0 {
		cfg.EmailPeriod = 5 * time.Minute
	}
	return &LoginGuard{
		byIP:    NewWindow(cfg.PerIP, cfg.IPPeriod),
		byEmail: NewWindow(cfg.PerEmail, cfg.EmailPeriod),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check records an attempt and returns a TooManyRequests error when either
// budget is spent.
func (g *LoginGuard) Check(r *http.Request, email string) error {
	if !g.byIP.Allow(ClientIP(r)) {
		return apperr.TooManyRequests("Too many login attempts, try again later")
	}
	if k := emailKey(email); k != "" && !g.byEmail.Allow(k) {
		return apperr.TooManyRequests("Too many login attempts for this account, try again later")
	}
	return nil
}

// Succeeded clears the email budget after a successful login.
func (g *LoginGuard) Succeeded(email string) {
	if k := emailKey(email); k != "" {
		g.byEmail.Reset(k)
	}
}
