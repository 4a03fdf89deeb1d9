// internal/app/system/workers/auditretention.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger deletes records older than a cutoff.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRetention is a background worker that removes audit events older
// than maxAge.
type AuditRetention struct {
	store    Purger
	log      *zap.Logger
	interval time.Duration
	maxAge   time.Duration
	timeout  time.Duration
	now      func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAuditRetention builds the worker. It runs every interval and keeps
// maxAge worth of events.
func NewAuditRetention(store Purger, logger *zap.Logger, interval, maxAge time.Duration) *AuditRetention {
	return &AuditRetention{
		store:    store,
		log:      logger,
		interval: interval,
		maxAge:   maxAge,
		timeout:  30 * time.Second,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop. A purge runs immediately.
func (w *AuditRetention) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("audit retention worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *AuditRetention) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("audit retention worker stopped")
	})
}

func (w *AuditRetention) run() {
	defer w.wg.Done()

	w.purge()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.purge()
		}
	}
}

func (w *AuditRetention) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	cutoff := w.now().Add(-w.maxAge)
	n, err := w.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to purge audit events", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("purged audit events", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}
