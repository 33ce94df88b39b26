package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

var (
	timePattern  = regexp.MustCompile(`^time=\S+`)
	levelPattern = regexp.MustCompile(`level=(DEBUG|INFO|WARN|ERROR)\S*`)
	errorPattern = regexp.MustCompile(`error=("(?:[^"\\]|\\.)*"|\S+)`)
)

// Highlighter colors slog text records for terminal output.
type Highlighter struct {
	time   lipgloss.Style
	levels map[string]lipgloss.Style
	err    lipgloss.Style
}

// NewHighlighter builds a Highlighter that renders through r. A nil r uses
// the default renderer, which drops colors when stdout is not a terminal.
func NewHighlighter(r *lipgloss.Renderer) Highlighter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	level := func(color string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	}
	return Highlighter{
		time: r.NewStyle().Foreground(lipgloss.Color("#808080")),
		levels: map[string]lipgloss.Style{
			"DEBUG": level("#87CEEB"),
			"INFO":  level("#5FD75F"),
			"WARN":  level("#FFD700"),
			"ERROR": level("#FF6B6B"),
		},
		err: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

// Line highlights one record. Lines that are not slog text records are
// returned unchanged.
func (h Highlighter) Line(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	line = timePattern.ReplaceAllStringFunc(line, func(s string) string { return h.time.Render(s) })
	line = levelPattern.ReplaceAllStringFunc(line, func(token string) string {
		name := levelPattern.FindStringSubmatch(token)[1]
		return h.levels[name].Render(token)
	})
	return errorPattern.ReplaceAllStringFunc(line, func(s string) string { return h.err.Render(s) })
}

// Lines highlights each record in lines.
func (h Highlighter) Lines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = h.Line(line)
	}
	return out
}
