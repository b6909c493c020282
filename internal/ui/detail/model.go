package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// Actions a detail view can request from its parent.
const (
	ActionComment = "comment"
	ActionAdvance = "advance"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
)

// BackMsg signals the parent to close the detail view.
type BackMsg struct{}

// ActionMsg signals the parent to execute an action on the open task.
type ActionMsg struct {
	Action string
	TaskID string
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		if m.task != nil {
			if action := m.actionFor(msg); action != "" {
				id := m.task.ID
				return m, func() tea.Msg {
					return ActionMsg{Action: action, TaskID: id}
				}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) actionFor(msg tea.KeyMsg) string {
	switch {
	case key.Matches(msg, m.keys.Comment):
		return ActionComment
	case key.Matches(msg, m.keys.Advance):
		return ActionAdvance
	case key.Matches(msg, m.keys.Edit):
		return ActionEdit
	case key.Matches(msg, m.keys.Delete):
		return ActionDelete
	}
	return ""
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}

	return m.viewport.View()
}

// Render builds the full detail content for t.
func Render(t model.Task, width int) string {
	var sections []string

	sections = append(sections, theme.TitleStyle.Render(t.Title))
	sections = append(sections, lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.StatusStyle(t.Status).Render(t.Status.Label()),
		"  ",
		theme.PriorityStyle(t.Priority).Render(t.Priority.Label()),
	))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return fmt.Sprintf("%-10s %s", metaStyle.Render(label), valStyle.Render(value))
	}

	assignee := "Unassigned"
	if t.Assignee != nil {
		assignee = t.Assignee.Name
	}
	sections = append(sections, row("Assignee:", assignee))
	if t.Creator != nil {
		sections = append(sections, row("Creator:", t.Creator.Name))
	}
	if t.DueDate != nil {
		sections = append(sections, row("Due:", t.DueDate.Format("Jan 2, 2006")))
	}
	sections = append(sections, row("Created:", t.CreatedAt.Format("Jan 2, 2006 15:04")))
	sections = append(sections, row("Updated:", t.UpdatedAt.Format("Jan 2, 2006 15:04")))
	if len(t.Tags) > 0 {
		sections = append(sections, row("Tags:", theme.TagStyle.Render(strings.Join(t.Tags, ", "))))
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	sections = append(sections, theme.TitleStyle.MarginBottom(1).Render("Description"))
	body := t.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	sections = append(sections, "", separator, "")
	sections = append(sections, theme.TitleStyle.Render(fmt.Sprintf("Comments (%d)", len(t.Comments))))
	sections = append(sections, "")

	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for _, c := range t.Comments {
		author := "Unknown User"
		initial := "U"
		if c.User != nil {
			author = c.User.Name
			initial = c.User.Initial()
		}
		sections = append(sections, fmt.Sprintf("%s %s  %s",
			theme.AvatarStyle.Render(initial),
			authorStyle.Render(author),
			timeStyle.Render(c.CreatedAt.Format("Jan 2, 2006 15:04")),
		))
		sections = append(sections, c.Content, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTask updates the task being displayed and re-renders the content.
// Scrolling resets only when a different task is shown.
func (m *Model) SetTask(t model.Task) {
	reset := m.task == nil || m.task.ID != t.ID
	m.task = &t
	m.viewport.SetContent(Render(t, m.width))
	if reset {
		m.viewport.GotoTop()
	}
}

// Clear removes the displayed task.
func (m *Model) Clear() {
	m.task = nil
	m.viewport.SetContent("")
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.task != nil {
		m.viewport.SetContent(Render(*m.task, width))
	}
}
