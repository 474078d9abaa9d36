// internal/app/system/workers/invitesweep.go
package workers

import (
	"context"
	"sync"
	"time"

	bucketstore "github.com/bucketlabs/bucketshare/internal/app/store/buckets"
	"go.uber.org/zap"
)

// InviteSweep is a background worker that clears invite fields from buckets
// whose invite expired more than the grace period ago. Invite validation
// already filters on expiry, so this is document hygiene, not correctness.
type InviteSweep struct {
	buckets  *bucketstore.Store
	log      *zap.Logger
	interval time.Duration
	grace    time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewInviteSweep creates the worker.
//
// Parameters:
//   - buckets: the bucket store
//   - interval: how often to sweep (e.g. 1 hour)
//   - grace: how long past expiry an invite is left in place (e.g. 24 hours)
func NewInviteSweep(buckets *bucketstore.Store, logger *zap.Logger, interval, grace time.Duration) *InviteSweep {
	return &InviteSweep{
		buckets:  buckets,
		log:      logger,
		interval: interval,
		grace:    grace,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *InviteSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("invite sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("grace", w.grace))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *InviteSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("invite sweep worker stopped")
}

func (w *InviteSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *InviteSweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-w.grace)
	count, err := w.buckets.SweepExpiredInvites(ctx, cutoff)
	if err != nil {
		w.log.Error("invite sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("cleared expired invites", zap.Int64("count", count))
	}
}
