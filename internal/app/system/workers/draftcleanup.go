// internal/app/system/workers/draftcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DraftPurger deletes drafts not updated since cutoff.
type DraftPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DraftCleanup is a background worker that expires server-side drafts
// of applicants who never came back.
type DraftCleanup struct {
	drafts   DraftPurger
	log      *zap.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDraftCleanup creates a draft cleanup worker.
//
// Parameters:
//   - drafts: the draft store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 hour)
//   - ttl: how long an untouched draft is kept (e.g., 30 days)
func NewDraftCleanup(drafts DraftPurger, logger *zap.Logger, interval, ttl time.Duration) *DraftCleanup {
	return &DraftCleanup{
		drafts:   drafts,
		log:      logger,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *DraftCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("draft cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("ttl", w.ttl))
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call more than once.
func (w *DraftCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("draft cleanup worker stopped")
}

func (w *DraftCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

// cleanup runs one pass and returns the number of drafts removed.
func (w *DraftCleanup) cleanup() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	count, err := w.drafts.DeleteOlderThan(ctx, w.now().Add(-w.ttl))
	if err != nil {
		w.log.Error("failed to delete expired drafts", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("deleted expired drafts", zap.Int64("count", count))
	}
	return count
}
