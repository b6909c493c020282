package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskflow/internal/theme"
)

// SubmitMsg is emitted when the user submits a non-empty value.
type SubmitMsg struct {
	Value string
}

// CancelMsg is emitted when the user dismisses the prompt.
type CancelMsg struct{}

// Model is a one-line input panel, used for adding comments.
type Model struct {
	title  string
	input  textinput.Model
	width  int
	height int
}

// New creates a prompt with the given panel title and placeholder.
func New(title, placeholder string, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.Width = width - 6

	return Model{
		title:  title,
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			m.input.Reset()
			return m, func() tea.Msg { return SubmitMsg{Value: value} }

		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt panel.
func (m Model) View() string {
	title := theme.TitleStyle.MarginBottom(1).Render(m.title)
	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(title + "\n" + m.input.View())
}

// SetSize updates the prompt dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
