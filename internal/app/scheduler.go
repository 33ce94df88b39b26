package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/salecheck/internal/refresh"
)

const defaultWakePeriod = 24 * time.Hour

// Runner executes one refresh cycle. *refresh.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, trigger refresh.Trigger) refresh.Outcome
}

// Schedule runs a cycle for first immediately and then one timer cycle every
// period until ctx is cancelled. Cycles never overlap: a tick that fires
// while a cycle is running is handled after it finishes, and further ticks
// in that window are dropped.
func Schedule(ctx context.Context, runner Runner, first refresh.Trigger, period time.Duration) error {
	if period <= 0 {
		period = defaultWakePeriod
	}

	wake(ctx, runner, first)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			wake(ctx, runner, refresh.TriggerTimer)
		}
	}
}

func wake(ctx context.Context, runner Runner, trigger refresh.Trigger) {
	if ctx.Err() != nil {
		return
	}
	slog.Debug("Wake", "trigger", trigger.String())
	runner.Run(ctx, trigger)
}
