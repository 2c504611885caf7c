package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nordstack/tokend/internal/token/store"
)

// HousekeepingService periodically prunes denylist entries for tokens that
// have expired on their own. The metadata ledger is deliberately untouched:
// it is the audit trail and grows append-only.
type HousekeepingService struct {
	Denylist store.Denylist
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(denylist store.Denylist, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Denylist: denylist,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup drops denylist rows for tokens already past their own expiry. Such
// tokens fail validation on the expiry check before the denylist is ever
// consulted, so the rows carry no information anymore.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	n, err := s.Denylist.DeleteExpiredBefore(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to prune denylist", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "denylist_pruned", n)
}
