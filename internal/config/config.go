package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings for SaleCheck.
type Config struct {
	APIBase          string
	StateDir         string
	LogLevel         string
	ThrottleInterval time.Duration
	WakePeriod       time.Duration
	RequestTimeout   time.Duration
	MetricsAddr      string // empty disables the metrics server
}

const (
	// StateDirEnv overrides the state directory regardless of the config file.
	StateDirEnv = "SALECHECK_STATE_DIR"

	defaultConfigPath       = "~/.config/salecheck/config.toml"
	defaultStateDir         = "~/.local/state/salecheck"
	defaultAPIBase          = "https://salecheck-backend-production.up.railway.app"
	defaultLogLevel         = "info"
	defaultThrottleInterval = 23 * time.Hour
	defaultWakePeriod       = 24 * time.Hour
	defaultRequestTimeout   = 15 * time.Second

	xdgStateHomeEnv = "XDG_STATE_HOME"
	appName         = "salecheck"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:          defaultAPIBase,
		StateDir:         defaultStateDirPath(),
		LogLevel:         defaultLogLevel,
		ThrottleInterval: defaultThrottleInterval,
		WakePeriod:       defaultWakePeriod,
		RequestTimeout:   defaultRequestTimeout,
	}
}

// Load reads the config file, falling back to defaults when it is missing.
// Blank fields keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase          string `toml:"api_base"`
		StateDir         string `toml:"state_dir"`
		LogLevel         string `toml:"log_level"`
		ThrottleInterval string `toml:"throttle_interval"`
		WakePeriod       string `toml:"wake_period"`
		RequestTimeout   string `toml:"request_timeout"`
		MetricsAddr      string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.StateDir); v != "" {
		cfg.StateDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	durations := []struct {
		key  string
		raw  string
		dest *time.Duration
	}{
		{"throttle_interval", raw.ThrottleInterval, &cfg.ThrottleInterval},
		{"wake_period", raw.WakePeriod, &cfg.WakePeriod},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("parse %s: must be positive, got %s", d.key, v)
		}
		*d.dest = parsed
	}

	return applyEnv(cfg)
}

func applyEnv(cfg Config) (Config, error) {
	if override := strings.TrimSpace(os.Getenv(StateDirEnv)); override != "" {
		dir, err := expandPath(override)
		if err != nil {
			return Config{}, fmt.Errorf("resolve %s: %w", StateDirEnv, err)
		}
		cfg.StateDir = dir
	}
	return cfg, nil
}

// StatePath returns the persisted product state file.
func (c Config) StatePath() string {
	return filepath.Join(c.stateDir(), "state.json")
}

// BadgePath returns the drop indicator file.
func (c Config) BadgePath() string {
	return filepath.Join(c.stateDir(), "badge.json")
}

// LogPath returns the daemon log file.
func (c Config) LogPath() string {
	return filepath.Join(c.stateDir(), "salecheck.log")
}

func (c Config) stateDir() string {
	if strings.TrimSpace(c.StateDir) == "" {
		return defaultStateDirPath()
	}
	return c.StateDir
}

func defaultStateDirPath() string {
	if xdg := strings.TrimSpace(os.Getenv(xdgStateHomeEnv)); xdg != "" {
		if root, err := expandPath(xdg); err == nil {
			return filepath.Join(root, appName)
		}
	}
	return mustExpand(defaultStateDir)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
