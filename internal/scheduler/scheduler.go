package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task now and then on each tick until ctx is done. Runs never
// overlap; a slow run delays the next tick instead of stacking up.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil && ctx.Err() == nil {
			slog.Error("scheduled task failed", "task", name, "err", err)
			return
		}
		slog.Debug("scheduled task done", "task", name, "dur_ms", time.Since(start).Milliseconds())
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
