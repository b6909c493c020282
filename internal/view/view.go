// Package view derives the read-only projections the screens display:
// filtered lists, the status board, dashboard statistics and the
// notification split. Nothing here mutates its input.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/taskflow/internal/model"
)

// All matches every status or priority in a Filter.
const All = "all"

const (
	recentLimit   = 6
	upcomingLimit = 4
	activityLimit = 4
)

// Filter narrows a task list. Empty or All fields match everything.
type Filter struct {
	Search   string
	Status   string
	Priority string
}

// Match reports whether t passes every criterion. Search is a
// case-insensitive substring match against title, description and tags.
func (f Filter) Match(t model.Task) bool {
	if f.Status != "" && f.Status != All && string(t.Status) != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != All && string(t.Priority) != f.Priority {
		return false
	}
	if f.Search == "" {
		return true
	}

	q := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Apply returns the tasks matching f, preserving order.
func (f Filter) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Column is one status lane of the board.
type Column struct {
	Status model.TaskStatus
	Tasks  []model.Task
}

// GroupByStatus splits tasks into one column per status, in board order.
// Every status gets a column, empty or not.
func GroupByStatus(tasks []model.Task) []Column {
	cols := make([]Column, len(model.Statuses))
	index := make(map[model.TaskStatus]int, len(model.Statuses))
	for i, s := range model.Statuses {
		cols[i] = Column{Status: s, Tasks: []model.Task{}}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// Stats is the dashboard summary for one user.
type Stats struct {
	Total      int
	Completed  int
	InProgress int
	Overdue    int
}

// CompletionRate returns Completed/Total as a percentage, or 0 with no tasks.
func (s Stats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// Summary is everything the dashboard shows.
type Summary struct {
	Stats        Stats
	Recent       []model.Task
	Upcoming     []model.Task
	Activity     []model.Task
	Distribution map[model.TaskStatus]int
}

// Dashboard summarizes tasks for user at now. Stats, Recent and Upcoming
// cover the tasks assigned to user; Activity and Distribution cover every
// task.
func Dashboard(tasks []model.Task, user model.User, now time.Time) Summary {
	mine := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.AssigneeID == user.ID {
			mine = append(mine, t)
		}
	}

	var stats Stats
	stats.Total = len(mine)
	for _, t := range mine {
		switch t.Status {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusInProgress:
			stats.InProgress++
		}
		if t.Overdue(now) {
			stats.Overdue++
		}
	}

	return Summary{
		Stats:        stats,
		Recent:       Recent(mine, recentLimit),
		Upcoming:     Upcoming(mine, upcomingLimit),
		Activity:     Recent(tasks, activityLimit),
		Distribution: Distribution(tasks),
	}
}

// Recent returns up to limit tasks, most recently updated first.
func Recent(tasks []model.Task, limit int) []model.Task {
	out := append([]model.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return truncate(out, limit)
}

// Upcoming returns up to limit unfinished tasks with a due date, soonest
// first.
func Upcoming(tasks []model.Task, limit int) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate != nil && t.Status != model.StatusCompleted {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return truncate(out, limit)
}

// Distribution counts tasks per status. Every status has an entry.
func Distribution(tasks []model.Task) map[model.TaskStatus]int {
	counts := make(map[model.TaskStatus]int, len(model.Statuses))
	for _, s := range model.Statuses {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// SplitNotifications partitions a feed into unread and read, each keeping
// feed order.
func SplitNotifications(feed []model.Notification) (unread, read []model.Notification) {
	unread = []model.Notification{}
	read = []model.Notification{}
	for _, n := range feed {
		if n.Read {
			read = append(read, n)
		} else {
			unread = append(unread, n)
		}
	}
	return unread, read
}

func truncate(tasks []model.Task, limit int) []model.Task {
	if limit >= 0 && len(tasks) > limit {
		return tasks[:limit]
	}
	return tasks
}
