package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/salecheck/internal/backend"
	"github.com/five82/salecheck/internal/badge"
	"github.com/five82/salecheck/internal/config"
	"github.com/five82/salecheck/internal/logging"
	"github.com/five82/salecheck/internal/prefs"
	"github.com/five82/salecheck/internal/refresh"
	"github.com/five82/salecheck/internal/state"
	"github.com/five82/salecheck/internal/telemetry"
	"github.com/five82/salecheck/internal/ui"
	"github.com/five82/salecheck/internal/watchlist"
)

// Options configure how the application is assembled.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/salecheck/prefs.toml
	Debug      bool   // forces debug logging regardless of log_level

	// Stderr receives log output; nil means os.Stderr. The list view passes
	// io.Discard so records only reach the log file.
	Stderr io.Writer
	// LogToFile copies every record to the configured log file.
	LogToFile bool
}

// App holds the wired components shared by the daemon, the CLI commands and
// the list view.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     *state.FileStore
	Indicator *badge.FileIndicator
	Client    *backend.Client
	Metrics   *telemetry.Metrics
	Refresher *refresh.Orchestrator
	Watchlist *watchlist.Service

	prefsPath string
	closeLog  func() error
}

// Open loads configuration and builds every component. Callers must Close
// the returned App.
func Open(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.Debug {
		level = "debug"
	}
	logOpts := logging.Options{Level: level, Stderr: opts.Stderr}
	if opts.LogToFile {
		logOpts.FilePath = cfg.LogPath()
	}
	logger, closeLog, err := logging.Setup(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	store, err := state.NewFileStore(cfg.StatePath())
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init state store: %w", err)
	}

	client, err := backend.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init backend client: %w", err)
	}

	indicator := badge.NewFileIndicator(cfg.BadgePath())
	metrics := telemetry.NewMetrics()
	refresher := refresh.New(store, client, indicator,
		refresh.WithMinInterval(cfg.ThrottleInterval),
		refresh.WithFetchTimeout(cfg.RequestTimeout),
		refresh.WithRecorder(metrics),
		refresh.WithLogger(logger),
	)

	logger.Debug("Application assembled",
		"state", store.Path(),
		"badge", indicator.Path(),
		"api_base", cfg.APIBase,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Indicator: indicator,
		Client:    client,
		Metrics:   metrics,
		Refresher: refresher,
		Watchlist: watchlist.New(store, client),
		prefsPath: opts.PrefsPath,
		closeLog:  closeLog,
	}, nil
}

// Close releases the log file.
func (a *App) Close() error {
	if a == nil || a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

// RunUI opens the list view and blocks until the user quits. Writes made by
// other processes, such as the daemon, reach the view through the state
// watcher.
func (a *App) RunUI(ctx context.Context) error {
	userPrefs, err := prefs.Load(a.prefsPath)
	if err != nil {
		a.Logger.Warn("Using default preferences", "error", err)
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	updates, unsubscribe := a.Store.Subscribe()
	defer unsubscribe()

	go func() {
		if err := a.Store.Watch(watchCtx); err != nil {
			a.Logger.Warn("State watcher stopped", "error", err)
		}
	}()

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     a.Store,
		Watchlist: a.Watchlist,
		Indicator: a.Indicator,
		Updates:   updates,
		ThemeName: userPrefs.Theme,
		PrefsPath: a.prefsPath,
		ShowHelp:  userPrefs.ShowHelp,
	})
}
