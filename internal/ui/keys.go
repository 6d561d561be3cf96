package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Watcher actions
	Acknowledge key.Binding
	SetPath     key.Binding
	SetInterval key.Binding
	OpenFile    key.Binding
	OpenFolder  key.Binding

	// Preview scrolling
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Prompts
	Confirm    key.Binding
	Cancel     key.Binding
	ToggleUnit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		Acknowledge: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Acknowledge"),
		),
		SetPath: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Set log path"),
		),
		SetInterval: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Set interval"),
		),
		OpenFile: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open log file"),
		),
		OpenFolder: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Open log folder"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Oldest line"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Newest line"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		ToggleUnit: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Seconds/minutes"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Acknowledge, k.SetPath, k.SetInterval, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Acknowledge, k.SetPath, k.SetInterval, k.OpenFile, k.OpenFolder},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

// promptHelp lists the bindings active while a prompt is open.
func (k keyMap) promptHelp(interval bool) []key.Binding {
	if interval {
		return []key.Binding{k.Confirm, k.ToggleUnit, k.Cancel}
	}
	return []key.Binding{k.Confirm, k.Cancel}
}
