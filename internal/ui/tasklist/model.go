package tasklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/view"
)

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// Model is the task list screen. It shows the tasks it was last given,
// narrowed by its filter.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	all         []model.Task
	filter      view.Filter
	board       bool
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search title, description or tags..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetTasks replaces the source list and reapplies the filter, keeping the
// cursor in range.
func (m *Model) SetTasks(tasks []model.Task) tea.Cmd {
	m.all = tasks
	return m.refresh()
}

// Filter returns the active filter.
func (m Model) Filter() view.Filter {
	return m.filter
}

// Board reports whether tasks are shown as status lanes.
func (m Model) Board() bool {
	return m.board
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Search = strings.TrimSpace(m.searchInput.Value())
		cmd := m.refresh()
		return m, cmd

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Search = ""
		cmd := m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: task.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.filter.Search)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleStatus):
		m.filter.Status = cycle(m.filter.Status, statusOptions())
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.CyclePriority):
		m.filter.Priority = cycle(m.filter.Priority, priorityOptions())
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilters):
		m.filter = view.Filter{}
		m.searchInput.Reset()
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.Board):
		m.board = !m.board
		cmd := m.refresh()
		return m, cmd
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) refresh() tea.Cmd {
	shown := m.filter.Apply(m.all)
	if m.board {
		// Board order, so the cursor walks one lane after another.
		var lanes []model.Task
		for _, col := range view.GroupByStatus(shown) {
			lanes = append(lanes, col.Tasks...)
		}
		shown = lanes
	}
	items := make([]list.Item, len(shown))
	for i, t := range shown {
		items[i] = TaskItem{Task: t}
	}
	m.list.Title = fmt.Sprintf("Tasks (%d of %d)", len(shown), len(m.all))
	return m.list.SetItems(items)
}

// FilterSummary describes the active filter, or "" when none is set.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", m.filter.Search))
	}
	if m.filter.Status != "" {
		parts = append(parts, "status "+m.filter.Status)
	}
	if m.filter.Priority != "" {
		parts = append(parts, "priority "+m.filter.Priority)
	}
	return strings.Join(parts, ", ")
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	if m.board {
		return m.renderBoard()
	}

	return m.list.View()
}

// renderBoard lays the filtered tasks out as one lane per status.
func (m Model) renderBoard() string {
	cols := view.GroupByStatus(m.filter.Apply(m.all))
	width := max(m.width/len(cols)-2, 12)
	selected, _ := m.SelectedTask()

	lanes := make([]string, len(cols))
	for i, col := range cols {
		rows := []string{theme.StatusStyle(col.Status).
			Render(fmt.Sprintf("%s (%d)", col.Status.Label(), len(col.Tasks)))}
		for _, t := range col.Tasks {
			card := lipgloss.NewStyle().
				Width(width-2).
				Padding(0, 1).
				Border(lipgloss.NormalBorder()).
				BorderForeground(theme.ColorBorder)
			if t.ID == selected.ID {
				card = card.BorderForeground(theme.ColorIndigo)
			}
			body := t.Title + "\n" + theme.PriorityStyle(t.Priority).Render(t.Priority.Label())
			if t.Assignee != nil {
				body += " " + theme.AvatarStyle.Render(t.Assignee.Initial())
			}
			rows = append(rows, card.Render(body))
		}
		lanes[i] = lipgloss.NewStyle().
			Width(width).
			MaxHeight(m.height).
			MarginRight(1).
			Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, lanes...)
}

// renderEmptyState shows guidance text when no tasks are shown.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.FilterSummary() != "" {
		return style.Render("No tasks found.\nTry adjusting your search or filters.")
	}
	return style.Render("No tasks found.\n\nPress n to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// cycle advances through "", options..., wrapping back to "".
func cycle(current string, options []string) string {
	if current == "" {
		return options[0]
	}
	for i, o := range options {
		if o == current {
			if i+1 < len(options) {
				return options[i+1]
			}
			return ""
		}
	}
	return ""
}

func statusOptions() []string {
	out := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		out[i] = string(s)
	}
	return out
}

func priorityOptions() []string {
	out := make([]string, len(model.Priorities))
	for i, p := range model.Priorities {
		out[i] = string(p)
	}
	return out
}
