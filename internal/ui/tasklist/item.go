package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// maxTags is how many tags a list row shows before eliding the rest.
const maxTags = 3

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Status.Label(),
		i.Task.Priority.Label(),
		relativeTime(i.Task.UpdatedAt, time.Now()),
	}
	return strings.Join(parts, " | ")
}

// TaskDelegate implements list.ItemDelegate for rendering task rows.
type TaskDelegate struct {
	// Now is the reference time for overdue and relative-time rendering.
	// Nil uses time.Now.
	Now func() time.Time
}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}

	line := RenderRow(ti.Task, d.now())
	if ti.Task.Status == model.StatusCompleted {
		line = theme.DimmedStyle.Render(line)
	}
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func (d TaskDelegate) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RenderRow renders one task as a single line: status, priority, title,
// assignee, tags, due date and an overdue flag.
func RenderRow(t model.Task, now time.Time) string {
	prefix := "○"
	if t.Status == model.StatusCompleted {
		prefix = "✓"
	}

	statusBadge := theme.StatusStyle(t.Status).Render(t.Status.Label())
	priBadge := theme.PriorityStyle(t.Priority).Render(t.Priority.Label())

	assignee := ""
	if t.Assignee != nil {
		assignee = " " + theme.AvatarStyle.Render(t.Assignee.Initial())
	}

	tags := ""
	if len(t.Tags) > 0 {
		display := t.Tags
		if len(display) > maxTags {
			display = append(append([]string{}, display[:maxTags]...), "…")
		}
		tags = theme.TagStyle.Render(" #" + strings.Join(display, ","))
	}

	due := ""
	if t.DueDate != nil {
		due = theme.DueDateStyle.Render(" " + t.DueDate.Format("Jan 02"))
	}

	overdue := ""
	if t.Overdue(now) {
		overdue = theme.OverdueStyle.Render(" OVERDUE")
	}

	updated := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render("  " + relativeTime(t.UpdatedAt, now))

	return fmt.Sprintf(
		"%s %s %s %s%s%s%s%s%s",
		prefix, statusBadge, priBadge, t.Title,
		assignee, tags, due, overdue, updated,
	)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
