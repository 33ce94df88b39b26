// Package config loads SaleCheck's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/salecheck/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. SALECHECK_STATE_DIR, when set, overrides state_dir
//
// # Default Values
//
//   - api_base: https://salecheck-backend-production.up.railway.app
//   - state_dir: $XDG_STATE_HOME/salecheck, else ~/.local/state/salecheck
//   - log_level: info
//   - throttle_interval: 23h
//   - wake_period: 24h
//   - request_timeout: 15s
//   - metrics_addr: empty (metrics server disabled)
//
// # TOML Format
//
//	api_base = "https://salecheck-backend-production.up.railway.app"
//	state_dir = "~/.local/state/salecheck"
//	log_level = "debug"
//	throttle_interval = "23h"
//	wake_period = "24h"
//	request_timeout = "15s"
//	metrics_addr = "127.0.0.1:9464"
//
// Durations use time.ParseDuration syntax and must be positive. An invalid
// duration fails Load with "parse <key>: ...".
//
// # Derived Paths
//
// Every file SaleCheck writes lives under the state directory:
//
//   - StatePath(): <state_dir>/state.json
//   - BadgePath(): <state_dir>/badge.json
//   - LogPath(): <state_dir>/salecheck.log
//
// # Path Expansion
//
// The package handles several path formats:
//
//   - Absolute paths: Used as-is ("/var/lib/salecheck")
//   - Tilde paths: Expanded to home directory ("~/.local/state/salecheck")
//   - Relative paths: Converted to absolute based on current directory
package config
