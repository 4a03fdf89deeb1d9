// Package timeouts holds the timeout values used with context.WithTimeout
// around database calls made by handlers and managers.
//
// Guidelines:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries
//   - Long: operations that touch more than one collection
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure applies cfg. Call it during startup before handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
}

// Current returns the active values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long}
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was the reason the context ended.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
