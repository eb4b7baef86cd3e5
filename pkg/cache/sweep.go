package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper runs PairStore.Sweep on a cron schedule, reclaiming pair entries
// left behind by a calcVersion bump. Grounded on the teacher's retention
// scheduler, adapted from file-retention pruning to cache-version sweeping.
type Sweeper struct {
	store    *PairStore
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// NewSweeper creates a Sweeper for store on the given cron schedule (e.g.
// "0 3 * * *" for daily at 3 AM). An empty schedule disables sweeping.
func NewSweeper(store *PairStore, schedule string) *Sweeper {
	return &Sweeper{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "cache.sweeper"),
	}
}

// Start validates the schedule and begins sweeping. A no-op when the
// schedule is empty.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("cache sweep schedule not configured, skipping")
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cache sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("cache sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Sweeper) runSweep(ctx context.Context) {
	deleted, err := s.store.Sweep(ctx)
	if err != nil {
		s.logger.Error("cache sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("cache sweep completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("cache sweep completed, no entries deleted")
	}
}

// Stop stops the scheduler, waiting for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		doneCtx := s.cron.Stop()
		<-doneCtx.Done()
		s.running = false
		s.logger.Info("cache sweeper stopped")
	}
}
