// Package badge maintains the unread price-drop indicator shown to the user.
package badge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/five82/salecheck/internal/atomicfile"
)

const (
	Foreground = "#FFFFFF"
	Background = "#FF3B30"
)

// Badge is the indicator's visible state. An empty Text means cleared.
type Badge struct {
	Text       string `json:"text"`
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
}

// FromCount returns the badge for a cycle that found n drops.
func FromCount(n int) Badge {
	if n <= 0 {
		return Badge{}
	}
	return Badge{
		Text:       strconv.Itoa(n),
		Foreground: Foreground,
		Background: Background,
	}
}

// Visible reports whether the badge has anything to show.
func (b Badge) Visible() bool {
	return b.Text != ""
}

// Indicator publishes the badge. Set replaces whatever was shown before.
type Indicator interface {
	Set(ctx context.Context, dropCount int) error
	Clear(ctx context.Context) error
}

var (
	_ Indicator = (*FileIndicator)(nil)
	_ Indicator = (*MemoryIndicator)(nil)
)

// FileIndicator writes the badge as JSON so other processes can display it.
type FileIndicator struct {
	path string
}

// NewFileIndicator returns an indicator backed by path.
func NewFileIndicator(path string) *FileIndicator {
	return &FileIndicator{path: path}
}

// Path returns the badge file location.
func (f *FileIndicator) Path() string {
	return f.path
}

func (f *FileIndicator) Set(ctx context.Context, dropCount int) error {
	return f.write(ctx, FromCount(dropCount))
}

func (f *FileIndicator) Clear(ctx context.Context) error {
	return f.write(ctx, Badge{})
}

func (f *FileIndicator) write(ctx context.Context, b Badge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.path == "" {
		return fmt.Errorf("badge path is empty")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode badge: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("create badge dir: %w", err)
	}
	if err := atomicfile.Write(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write badge: %w", err)
	}
	return nil
}

// Load reads the badge at path. A missing file is a cleared badge.
func Load(path string) (Badge, error) {
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Badge{}, nil
		}
		return Badge{}, fmt.Errorf("read badge: %w", err)
	}
	var b Badge
	if err := json.Unmarshal(data, &b); err != nil {
		return Badge{}, fmt.Errorf("decode badge: %w", err)
	}
	return b, nil
}

// MemoryIndicator keeps the badge in memory.
type MemoryIndicator struct {
	mu    sync.Mutex
	badge Badge
	sets  int
}

func (m *MemoryIndicator) Set(_ context.Context, dropCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badge = FromCount(dropCount)
	m.sets++
	return nil
}

func (m *MemoryIndicator) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badge = Badge{}
	return nil
}

// Current returns the badge last published.
func (m *MemoryIndicator) Current() Badge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badge
}

// SetCalls counts Set invocations.
func (m *MemoryIndicator) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Render draws the badge as a colored pill, or "" when cleared.
func Render(b Badge) string {
	if !b.Visible() {
		return ""
	}
	fg, bg := b.Foreground, b.Background
	if fg == "" {
		fg = Foreground
	}
	if bg == "" {
		bg = Background
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg)).
		Render(b.Text)
}
