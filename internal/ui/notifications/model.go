package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/view"
)

// MarkReadMsg asks the parent to mark one notification as read.
type MarkReadMsg struct {
	ID string
}

// MarkAllReadMsg asks the parent to mark every notification as read.
type MarkAllReadMsg struct{}

// Model is the notification panel: unread entries first, then read ones.
type Model struct {
	keys   *keys.KeyMap
	unread []model.Notification
	read   []model.Notification
	cursor int
	now    time.Time
	width  int
	height int
}

// New creates a notification panel.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetNotifications replaces the feed shown, keeping the cursor in range.
func (m *Model) SetNotifications(feed []model.Notification, now time.Time) {
	m.unread, m.read = view.SplitNotifications(feed)
	m.now = now
	if n := m.len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.Notification, bool) {
	if m.cursor < len(m.unread) {
		return m.unread[m.cursor], true
	}
	if i := m.cursor - len(m.unread); i < len(m.read) {
		return m.read[i], true
	}
	return model.Notification{}, false
}

// Update handles navigation and the mark-read keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Down):
		if m.cursor < m.len()-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.MarkRead), key.Matches(km, m.keys.Select):
		if n, ok := m.Selected(); ok && !n.Read {
			return m, func() tea.Msg { return MarkReadMsg{ID: n.ID} }
		}
	case key.Matches(km, m.keys.MarkAllRead):
		if len(m.unread) > 0 {
			return m, func() tea.Msg { return MarkAllReadMsg{} }
		}
	}
	return m, nil
}

// View renders the panel.
func (m Model) View() string {
	header := theme.TitleStyle.Render(fmt.Sprintf("Notifications (%d unread)", len(m.unread)))
	if m.len() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, "",
			theme.DimmedStyle.Render("No notifications. You're all caught up!"))
	}

	var lines []string
	at := 0
	if len(m.unread) > 0 {
		lines = append(lines, theme.HelpStyle.Render("Unread"))
		for i, n := range m.unread {
			if i == m.cursor {
				at = len(lines)
			}
			lines = append(lines, m.row(n, i == m.cursor))
		}
		lines = append(lines, "")
	}
	if len(m.read) > 0 {
		lines = append(lines, theme.HelpStyle.Render("Earlier"))
		for i, n := range m.read {
			if len(m.unread)+i == m.cursor {
				at = len(lines)
			}
			lines = append(lines, m.row(n, len(m.unread)+i == m.cursor))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(m.window(lines, at), "\n"))
}

// window trims lines to the rows below the header, scrolled so line at is
// visible.
func (m Model) window(lines []string, at int) []string {
	rows := m.height - 2
	if rows <= 0 || len(lines) <= rows {
		return lines
	}
	start := 0
	if at >= rows {
		start = at - rows + 1
	}
	return lines[start : start+rows]
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) row(n model.Notification, selected bool) string {
	icon := theme.NotificationStyle(n.Type).Render(theme.NotificationIcon(n.Type))
	age := theme.DimmedStyle.Render(ago(n.CreatedAt, m.now))
	line := fmt.Sprintf("%s %s  %s  %s", icon, theme.TitleStyle.Render(n.Title), n.Message, age)
	if n.Read {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) len() int {
	return len(m.unread) + len(m.read)
}

func ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
