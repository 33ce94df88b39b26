package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/five82/salecheck/internal/badge"
	"github.com/five82/salecheck/internal/prefs"
	"github.com/five82/salecheck/internal/product"
	"github.com/five82/salecheck/internal/state"
	"github.com/five82/salecheck/internal/watchlist"
)

// Options configures the list view.
type Options struct {
	Context   context.Context
	Store     state.Store
	Watchlist *watchlist.Service
	Indicator badge.Indicator
	// Updates delivers snapshots written after the view opened. Run fills it
	// from Store.Subscribe when nil.
	Updates   <-chan state.Snapshot
	ThemeName string
	PrefsPath string
	ShowHelp  bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     state.Store
	list      *watchlist.Service
	indicator badge.Indicator
	updates   <-chan state.Snapshot
	prefsPath string

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	showHelp bool

	// Data state
	products   []product.Record // stored order
	rows       []product.Record // display order
	lastUpdate *time.Time
	loaded     bool
	sort       product.SortState
	cursor     int

	// Rename input
	renaming bool
	input    textinput.Model

	status    string
	statusErr bool
}

// snapshotMsg carries the initial load; watchMsg carries later writes.
type snapshotMsg state.Snapshot

type watchMsg state.Snapshot

type actionMsg struct {
	done string
	err  error
}

type indicatorMsg struct{ err error }

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = "Custom title"
	ti.CharLimit = 120
	ti.Prompt = "Rename: "

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		list:      opts.Watchlist,
		indicator: opts.Indicator,
		updates:   opts.Updates,
		prefsPath: opts.PrefsPath,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		showHelp:  opts.ShowHelp,
		input:     ti,
	}
}

// Init implements tea.Model. Opening the view clears the drop indicator.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadCmd(m.ctx, m.store),
		clearIndicatorCmd(m.ctx, m.indicator),
	}
	if m.updates != nil {
		cmds = append(cmds, waitCmd(m.updates))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.renaming {
			return m.handleRenameKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.apply(state.Snapshot(msg))
		return m, nil

	case watchMsg:
		m.apply(state.Snapshot(msg))
		return m, waitCmd(m.updates)

	case actionMsg:
		m.setStatus(msg.done, msg.err)
		return m, nil

	case indicatorMsg:
		if msg.err != nil {
			m.setStatus("", fmt.Errorf("clear indicator: %w", msg.err))
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return m.render()
}

// apply replaces the view's data with snap and resets any active sort. The
// cursor stays on the same product when it is still tracked.
func (m *Model) apply(snap state.Snapshot) {
	selected := m.selectedID()
	m.products = snap.Products
	m.lastUpdate = snap.LastUpdate
	m.loaded = true
	m.sort = product.SortState{}
	m.rows = m.sort.Apply(m.products)
	if idx := product.IndexOf(m.rows, selected); idx >= 0 {
		m.cursor = idx
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
}

func (m Model) selected() (product.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return product.Record{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) selectedID() string {
	if r, ok := m.selected(); ok {
		return r.ID
	}
	return ""
}

func (m *Model) setStatus(done string, err error) {
	if err != nil {
		var verr *product.ValidationError
		if errors.As(err, &verr) {
			m.status = verr.Message
		} else {
			m.status = err.Error()
		}
		m.statusErr = true
		return
	}
	if done != "" {
		m.status = done
		m.statusErr = false
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.SortName):
		return m.sortBy(product.SortName), nil
	case key.Matches(msg, m.keys.SortWas):
		return m.sortBy(product.SortWas), nil
	case key.Matches(msg, m.keys.SortNow):
		return m.sortBy(product.SortNow), nil
	case key.Matches(msg, m.keys.SortPercent):
		return m.sortBy(product.SortPercent), nil
	}

	rec, ok := m.selected()
	if !ok || m.list == nil {
		return m, nil
	}
	id := rec.ID

	switch {
	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		to := product.IndexOf(m.products, id) - 1
		if key.Matches(msg, m.keys.MoveDown) {
			to += 2
		}
		if to < 0 || to >= len(m.products) {
			return m, nil
		}
		return m, m.action("", func(ctx context.Context) error {
			return m.list.Move(ctx, id, to)
		})

	case key.Matches(msg, m.keys.Rename):
		m.renaming = true
		m.input.SetValue(rec.DisplayName())
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.ResetTitle):
		return m, m.action("Title reset.", func(ctx context.Context) error {
			return m.list.ResetTitle(ctx, id)
		})

	case key.Matches(msg, m.keys.Remove):
		name := rec.DisplayName()
		return m, m.action(fmt.Sprintf("Removed %s.", name), func(ctx context.Context) error {
			return m.list.Remove(ctx, id)
		})

	case key.Matches(msg, m.keys.Acknowledge):
		return m, m.action("", func(ctx context.Context) error {
			return m.list.Acknowledge(ctx, id)
		})
	}

	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.renaming = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.renaming = false
		m.input.Blur()
		id, title := m.selectedID(), m.input.Value()
		if id == "" || m.list == nil {
			return m, nil
		}
		return m, m.action("Renamed.", func(ctx context.Context) error {
			return m.list.Rename(ctx, id, title)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// sortBy advances the sort cycle for column and keeps the cursor on the
// selected product.
func (m Model) sortBy(column product.SortColumn) Model {
	selected := m.selectedID()
	m.sort = m.sort.Next(column)
	m.rows = m.sort.Apply(m.products)
	if idx := product.IndexOf(m.rows, selected); idx >= 0 {
		m.cursor = idx
	}
	m.clampCursor()
	return m
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, ShowHelp: m.showHelp})
}

func (m Model) action(done string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{done: done, err: fn(ctx)}
	}
}

// Commands

func loadCmd(ctx context.Context, store state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := store.Load(ctx)
		if err != nil {
			return actionMsg{err: fmt.Errorf("load state: %w", err)}
		}
		return snapshotMsg(snap)
	}
}

func waitCmd(updates <-chan state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return watchMsg(snap)
	}
}

func clearIndicatorCmd(ctx context.Context, indicator badge.Indicator) tea.Cmd {
	if indicator == nil {
		return nil
	}
	return func() tea.Msg {
		return indicatorMsg{err: indicator.Clear(ctx)}
	}
}

// Run opens the list view and blocks until the user quits.
func Run(opts Options) error {
	if opts.Updates == nil && opts.Store != nil {
		updates, unsubscribe := opts.Store.Subscribe()
		defer unsubscribe()
		opts.Updates = updates
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
