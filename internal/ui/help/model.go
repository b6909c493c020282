package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update is a no-op; the root model closes the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the full keybinding table.
func (m Model) View() string {
	title := theme.TitleStyle.MarginBottom(1).Render("Keyboard Shortcuts")
	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(title + "\n" + m.help.View(m.keys))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
