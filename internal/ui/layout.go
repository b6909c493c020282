// Package ui holds the terminal screens built on the orchestrator.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/theme"
)

// Layout manages the terminal frame: header, tab bar, content and status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	TabsHeight      int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions. Every bar
// is one line tall.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		TabsHeight:      1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active screen.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.TabsHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title on the left and right-aligned text, such
// as the signed-in user, on the right.
func (l Layout) RenderHeader(title, right string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	rightRendered := theme.HeaderStyle.Render(right)
	return l.fill(theme.HeaderStyle, titleRendered, rightRendered)
}

// RenderTabs renders the screen names, highlighting the active one.
func (l Layout) RenderTabs(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		if i == active {
			parts[i] = theme.SelectedItemStyle.Render(label)
		} else {
			parts[i] = theme.ListItemStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderStatusBar renders keyboard hints, or msg in the error style when
// it is not empty.
func (l Layout) RenderStatusBar(hints, msg string) string {
	if msg != "" {
		return l.fill(theme.ErrorBarStyle, theme.ErrorBarStyle.Render(msg), "")
	}
	return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

// RenderWithFrame composes a full terminal view by stacking its parts.
func (l Layout) RenderWithFrame(header, tabs, content, statusBar string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		tabs,
		content,
		statusBar,
	)
}

// fill pads between left and right with the style's background so the bar
// spans the full width.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Background(style.GetBackground()).
		Render(strings.Repeat(" ", gap))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
