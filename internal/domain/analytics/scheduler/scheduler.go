package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SnapshotWarmer defines the interface for recomputing the dashboard snapshot
type SnapshotWarmer interface {
	WarmSnapshot(ctx context.Context) error
}

// Scheduler periodically warms the analytics snapshot so interactive
// requests stay on the cache path.
type Scheduler struct {
	warmer   SnapshotWarmer
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// New creates a new snapshot refresh scheduler
func New(warmer SnapshotWarmer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		warmer:   warmer,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("snapshot refresher started", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("snapshot refresher stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Warm immediately on start
	s.warm(ctx)

	for {
		select {
		case <-ticker.C:
			s.warm(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// warm runs one snapshot recomputation
func (s *Scheduler) warm(ctx context.Context) {
	s.logger.Debug("warming analytics snapshot")

	if err := s.warmer.WarmSnapshot(ctx); err != nil {
		s.logger.Error("failed to warm analytics snapshot", "error", err)
	}
}
