package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bizlink/digest-engine/internal/digest"
)

// Scheduler triggers an engine run on a fixed interval, replacing an
// external cron when RUN_INTERVAL is configured. Each tick is a complete,
// bounded pass; a tick overlapping a slow HTTP-triggered run is safe
// because completion marking is conditional per event.
type Scheduler struct {
	coord    *digest.Coordinator
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(coord *digest.Coordinator, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{coord: coord, interval: interval, logger: logger}
}

// Run ticks every interval and executes one engine pass per tick.
// Stops cleanly when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping")
			return
		case <-ticker.C:
			if _, err := s.coord.Run(ctx); err != nil {
				s.logger.Error("scheduled run aborted", zap.Error(err))
			}
		}
	}
}
