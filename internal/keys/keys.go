package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search and filters
	Search        key.Binding
	CycleStatus   key.Binding
	CyclePriority key.Binding
	ClearFilters  key.Binding
	Board         key.Binding

	// Help toggle
	Help key.Binding

	// Screens
	Dashboard     key.Binding
	Tasks         key.Binding
	Notifications key.Binding
	Calendar      key.Binding
	Team          key.Binding
	Analytics     key.Binding
	Settings      key.Binding

	// Task actions
	New     key.Binding
	Edit    key.Binding
	Advance key.Binding
	Delete  key.Binding
	Comment key.Binding

	// Notification actions
	MarkRead    key.Binding
	MarkAllRead key.Binding

	// Session
	Logout key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter status"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "filter priority"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear filters"),
		),
		Board: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "toggle board"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "tasks"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "notifications"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "calendar"),
		),
		Team: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "team"),
		),
		Analytics: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "analytics"),
		),
		Settings: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Advance: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next status"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Dashboard, k.Tasks, k.Notifications, k.Calendar, k.Team, k.Analytics, k.Settings},
		{k.Search, k.CycleStatus, k.CyclePriority, k.ClearFilters, k.Board},
		{k.New, k.Edit, k.Advance, k.Delete, k.Comment},
		{k.MarkRead, k.MarkAllRead, k.Help, k.Logout},
	}
}
