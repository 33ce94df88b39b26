// Package prefs keeps the list-view settings a user toggles from inside the
// view, the color theme and the key legend, so they survive restarts.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/salecheck/internal/atomicfile"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs is the persisted list-view state.
type Prefs struct {
	Theme    string `toml:"theme"`
	ShowHelp bool   `toml:"show_help"`
}

const (
	defaultPrefsPath = "~/.config/salecheck/prefs.toml"
	defaultTheme     = "Dracula"
)

// DefaultPath is used when no preferences path is given.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default is what a fresh install shows: the Dracula theme with the legend on.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, ShowHelp: true}
}

// Load returns the stored preferences. Keys absent from the file keep their
// defaults and a missing file is not an error. When the file cannot be read
// or decoded Load still returns Default alongside the error, so the view can
// open and the caller decides whether to report it.
func Load(path string) (Prefs, error) {
	out := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return out, err
	}
	// #nosec G304 -- path comes from flags or the default location
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return out, nil
	case err != nil:
		return out, fmt.Errorf("read prefs: %w", err)
	}

	if err := toml.Unmarshal(data, &out); err != nil {
		return Default(), fmt.Errorf("decode prefs %s: %w", resolved, err)
	}
	out.Theme = strings.TrimSpace(out.Theme)
	if out.Theme == "" {
		out.Theme = defaultTheme
	}
	return out, nil
}

// Save replaces the preferences file. The view calls it after every toggle,
// so the write goes through a temporary file to survive an interrupted exit.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o750); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := atomicfile.Write(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve prefs path: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
