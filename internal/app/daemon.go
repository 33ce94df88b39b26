package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/five82/salecheck/internal/refresh"
	"github.com/five82/salecheck/internal/state"
	"github.com/five82/salecheck/internal/telemetry"
)

// RunDaemon assembles the application and keeps prices fresh until ctx is
// cancelled. See (*App).RunDaemon.
func RunDaemon(ctx context.Context, opts Options) error {
	opts.LogToFile = true
	a, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return a.RunDaemon(ctx)
}

// RunDaemon emits the install wake when no state file exists yet, otherwise
// the startup wake, and then a timer wake every configured wake period. When
// a metrics address is configured the status server runs alongside; if it
// fails the daemon stops and returns its error.
func (a *App) RunDaemon(ctx context.Context) error {
	first := refresh.TriggerStartup
	if !a.Store.Exists() {
		first = refresh.TriggerInstall
		// Later starts are startup wakes even while nothing is tracked.
		if err := a.Store.Save(ctx, state.Snapshot{}); err != nil {
			return fmt.Errorf("initialize state: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		serverErr error
	)
	if addr := a.Config.MetricsAddr; addr != "" {
		srv := telemetry.NewServer(addr, a.Metrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx); err != nil {
				serverErr = err
				cancel()
			}
		}()
	}

	a.Logger.Info("Daemon started",
		"trigger", first.String(),
		"wake_period", a.Config.WakePeriod,
		"throttle_interval", a.Config.ThrottleInterval,
		"state", a.Store.Path(),
	)
	err := Schedule(ctx, a.Refresher, first, a.Config.WakePeriod)
	cancel()
	wg.Wait()
	a.Logger.Info("Daemon stopped")

	if serverErr != nil {
		return serverErr
	}
	return err
}
