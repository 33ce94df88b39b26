package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the list view.
type keyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Item actions
	MoveUp      key.Binding
	MoveDown    key.Binding
	Rename      key.Binding
	ResetTitle  key.Binding
	Remove      key.Binding
	Acknowledge key.Binding

	// Sorting
	SortName    key.Binding
	SortWas     key.Binding
	SortNow     key.Binding
	SortPercent key.Binding

	// Global
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Rename input
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Down"),
		),

		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "Move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "Move down"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rename"),
		),
		ResetTitle: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Reset title"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Remove"),
		),
		Acknowledge: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Mark seen"),
		),

		SortName: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Sort name"),
		),
		SortWas: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Sort was"),
		),
		SortNow: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Sort now"),
		),
		SortPercent: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Sort %"),
		),

		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "Help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// legend returns the bindings shown in the footer.
func (k keyMap) legend() []key.Binding {
	return []key.Binding{
		k.MoveUp, k.MoveDown, k.Rename, k.ResetTitle, k.Remove, k.Acknowledge,
		k.SortName, k.SortWas, k.SortNow, k.SortPercent,
		k.CycleTheme, k.Help, k.Quit,
	}
}
