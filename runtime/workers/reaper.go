package workers

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts rooms idle beyond their TTL; implemented by the
// coordinator.
type Sweeper interface {
	Sweep(now time.Time) int
}

// ReaperWorker periodically sweeps abandoned rooms. It runs independently
// of request traffic and never inspects channel liveness: a room with
// connected members but no state-changing activity still expires.
type ReaperWorker struct {
	log      *slog.Logger
	sweeper  Sweeper
	interval time.Duration
}

func NewReaperWorker(log *slog.Logger, sweeper Sweeper, interval time.Duration) *ReaperWorker {
	return &ReaperWorker{log: log, sweeper: sweeper, interval: interval}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting room reaper", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if evicted := w.sweeper.Sweep(time.Now()); evicted > 0 {
				w.log.Info("Swept expired rooms", "count", evicted)
			}
		}
	}
}
