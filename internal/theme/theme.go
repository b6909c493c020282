package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorIndigo  = lipgloss.AdaptiveColor{Dark: "#7F7FFF", Light: "#4C51BF"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorIndigo).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorBarStyle replaces the status bar when an intent failed.
var ErrorBarStyle = StatusBarStyle.
	Foreground(ColorWhite).
	Background(ColorRed)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle frames one dashboard panel.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle renders panel and section titles.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// DimmedStyle mutes completed or read entries.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OverdueStyle flags tasks past their due date.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// DueDateStyle renders due dates.
var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorOrange)

// TagStyle renders task tags.
var TagStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// AvatarStyle renders a user's initial as a badge.
var AvatarStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorMagenta).
	Padding(0, 1)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status model.TaskStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusTodo:
		return base.Foreground(ColorGray)
	case model.StatusInProgress:
		return base.Foreground(ColorBlue)
	case model.StatusReview:
		return base.Foreground(ColorMagenta)
	case model.StatusCompleted:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given priority.
func PriorityStyle(priority model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityUrgent:
		return base.Foreground(ColorRed)
	case model.PriorityHigh:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationStyle returns a color-coded style for the given notification type.
func NotificationStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch t {
	case model.NotificationTaskAssigned:
		return base.Foreground(ColorBlue)
	case model.NotificationTaskCompleted:
		return base.Foreground(ColorGreen)
	case model.NotificationCommentAdded:
		return base.Foreground(ColorMagenta)
	case model.NotificationDueDateReminder:
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationIcon returns a one-glyph marker for the notification type.
func NotificationIcon(t model.NotificationType) string {
	switch t {
	case model.NotificationTaskAssigned:
		return "+"
	case model.NotificationTaskCompleted:
		return "✓"
	case model.NotificationCommentAdded:
		return "…"
	case model.NotificationDueDateReminder:
		return "!"
	default:
		return "•"
	}
}
