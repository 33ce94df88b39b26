// Package app is the composition root for SaleCheck.
//
// # Overview
//
// Open loads configuration and wires the components every entry point
// shares: the file-backed state store, the drop indicator, the backend
// client, the metrics registry, the refresh orchestrator and the watchlist
// service. The CLI commands, the daemon and the list view all start from
// the same App.
//
// # Components
//
//   - app.go: Options, Open and the list view entry point
//   - daemon.go: daemon lifecycle and the optional metrics server
//   - scheduler.go: wake loop that drives refresh cycles
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │ Assemble components
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()           Read config.toml
//	       ├─────> logging.Setup()         stderr (+ salecheck.log)
//	       ├─────> state.NewFileStore()    state.json under flock
//	       ├─────> backend.NewClient()     Price backend
//	       ├─────> badge.NewFileIndicator() badge.json
//	       └─────> refresh.New()           Guarded refresh cycle
//
//	Daemon:
//	┌─────────────────────────────────────────┐
//	│ RunDaemon()                             │
//	│  ├─> install or startup wake            │
//	│  ├─> timer wake every wake_period       │
//	│  │    └─> Orchestrator.Run()            │
//	│  └─> telemetry server (metrics_addr)    │
//	└─────────────────────────────────────────┘
//
// # Wake Events
//
// The first start against an empty state directory is an install wake and
// writes an empty state file, so every later start is a startup wake. After
// that the scheduler emits a timer wake every wake_period (24h by default).
// Each wake runs one cycle to completion before the next tick is read; the
// throttle guard decides whether the cycle actually fetches.
//
// # Error Handling
//
// Failures inside a cycle are logged and recorded by the orchestrator and
// never stop the daemon. Open fails on invalid configuration or an unusable
// state directory, and RunDaemon returns the metrics server's error if the
// listener cannot start.
package app
