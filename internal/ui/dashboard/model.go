package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/ui/tasklist"
	"github.com/nhle/taskflow/internal/view"
)

// Model is the dashboard screen.
type Model struct {
	user    model.User
	summary view.Summary
	now     time.Time
	width   int
	height  int
}

// New creates a dashboard model.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetData recomputes the summary for user over tasks.
func (m *Model) SetData(tasks []model.Task, user model.User, now time.Time) {
	m.user = user
	m.now = now
	m.summary = view.Dashboard(tasks, user, now)
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the dashboard.
func (m Model) View() string {
	return Render(m.summary, m.user, m.now, m.width)
}

// Render draws the greeting, the stat cards and the task panels.
func Render(s view.Summary, user model.User, now time.Time, width int) string {
	greeting := theme.TitleStyle.Render(fmt.Sprintf("Welcome back, %s!", firstName(user.Name)))
	intro := theme.HelpStyle.Render(fmt.Sprintf(
		"You have %d tasks in progress and %d overdue tasks.",
		s.Stats.InProgress, s.Stats.Overdue,
	))

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Total Tasks", s.Stats.Total, theme.ColorBlue),
		statCard("Completed", s.Stats.Completed, theme.ColorGreen),
		statCard("In Progress", s.Stats.InProgress, theme.ColorYellow),
		statCard("Overdue", s.Stats.Overdue, theme.ColorRed),
	)

	progress := theme.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Progress"),
		fmt.Sprintf("Completion rate %d%%", s.Stats.CompletionRate()),
		progressBar(s.Stats.CompletionRate(), 30),
		"",
		distribution(s.Distribution),
	))

	panelWidth := max(width/2-2, 30)
	recent := taskPanel("Recent Tasks", s.Recent, now, panelWidth, "No tasks assigned to you yet")
	upcoming := taskPanel("Upcoming Deadlines", s.Upcoming, now, panelWidth, "Nothing due")
	activity := taskPanel("Team Activity", s.Activity, now, panelWidth, "No activity")

	return lipgloss.JoinVertical(lipgloss.Left,
		greeting,
		intro,
		"",
		cards,
		lipgloss.JoinHorizontal(lipgloss.Top, progress, recent),
		lipgloss.JoinHorizontal(lipgloss.Top, upcoming, activity),
	)
}

func statCard(title string, value int, color lipgloss.AdaptiveColor) string {
	number := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprint(value))
	return theme.CardStyle.Width(18).Render(theme.HelpStyle.Render(title) + "\n" + number)
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(strings.Repeat("░", width-filled))
}

func distribution(counts map[model.TaskStatus]int) string {
	lines := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		lines = append(lines, fmt.Sprintf("%-13s %d", theme.StatusStyle(s).Render(s.Label()), counts[s]))
	}
	return strings.Join(lines, "\n")
}

func taskPanel(title string, tasks []model.Task, now time.Time, width int, empty string) string {
	lines := []string{theme.TitleStyle.Render(title)}
	if len(tasks) == 0 {
		lines = append(lines, theme.DimmedStyle.Render(empty))
	}
	for _, t := range tasks {
		lines = append(lines, tasklist.RenderRow(t, now))
	}
	return theme.CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "there"
}
