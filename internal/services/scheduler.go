package services

import (
	"context"
	"time"

	"skillup-go/internal/repository"

	"go.uber.org/zap"
)

// Scheduler runs periodic maintenance: expired refresh sessions are closed.
type Scheduler struct {
	log      *zap.Logger
	store    *repository.Store
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(log *zap.Logger, store *repository.Store, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		log:      log.Named("scheduler"),
		store:    store,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the scheduler in a goroutine until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("Starting maintenance scheduler...", zap.Duration("interval", s.interval))
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Maintenance scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce closes every session whose refresh token has expired.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	closed, err := s.store.UnitOfWork().Sessions.DeactivateExpired(ctx, s.now().UTC())
	if err != nil {
		s.log.Error("Failed to close expired sessions", zap.Error(err))
		return 0
	}
	if closed > 0 {
		s.log.Info("Closed expired sessions", zap.Int64("count", closed))
	}
	return closed
}
