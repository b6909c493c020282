// Package fixture provides the seed dataset the stores are initialized from.
package fixture

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nhle/taskflow/internal/model"
)

// ErrDuplicateID is returned when a fixture reuses an identifier.
var ErrDuplicateID = errors.New("duplicate fixture id")

const day = 24 * time.Hour

// Fixture is the read-only initial state handed to the stores at start-up.
type Fixture struct {
	Users         []model.User         `yaml:"users"`
	Tasks         []model.Task         `yaml:"tasks"`
	Notifications []model.Notification `yaml:"notifications"`
}

// Default returns the built-in demo workspace with timestamps relative to now.
func Default(now time.Time) Fixture {
	users := []model.User{
		{ID: "1", Name: "John Doe", Email: "john@taskflow.com", Role: model.RoleAdmin, CreatedAt: now},
		{ID: "2", Name: "Sarah Wilson", Email: "sarah@taskflow.com", Role: model.RoleManager, CreatedAt: now},
		{ID: "3", Name: "Mike Johnson", Email: "mike@taskflow.com", Role: model.RoleMember, CreatedAt: now},
		{ID: "4", Name: "Emily Chen", Email: "emily@taskflow.com", Role: model.RoleMember, CreatedAt: now},
	}

	tasks := []model.Task{
		{
			ID:          "1",
			Title:       "Design Landing Page",
			Description: "Create a modern, responsive landing page for the new product launch with conversion optimization.",
			Status:      model.StatusInProgress,
			Priority:    model.PriorityHigh,
			AssigneeID:  "2",
			CreatedBy:   "1",
			DueDate:     model.Ptr(now.Add(3 * day)),
			CreatedAt:   now.Add(-2 * day),
			UpdatedAt:   now,
			Tags:        []string{"design", "frontend", "marketing"},
			Comments: []model.Comment{
				{
					ID:        "1",
					TaskID:    "1",
					UserID:    "1",
					Content:   "Please focus on mobile-first design approach",
					CreatedAt: now.Add(-1 * day),
				},
			},
		},
		{
			ID:          "2",
			Title:       "API Integration",
			Description: "Integrate payment gateway API with the checkout process and handle error scenarios.",
			Status:      model.StatusReview,
			Priority:    model.PriorityUrgent,
			AssigneeID:  "3",
			CreatedBy:   "1",
			DueDate:     model.Ptr(now.Add(1 * day)),
			CreatedAt:   now.Add(-5 * day),
			UpdatedAt:   now,
			Tags:        []string{"backend", "api", "payment"},
			Comments:    []model.Comment{},
		},
		{
			ID:          "3",
			Title:       "Database Optimization",
			Description: "Optimize database queries for better performance and add proper indexing.",
			Status:      model.StatusTodo,
			Priority:    model.PriorityMedium,
			AssigneeID:  "4",
			CreatedBy:   "2",
			DueDate:     model.Ptr(now.Add(7 * day)),
			CreatedAt:   now.Add(-1 * day),
			UpdatedAt:   now,
			Tags:        []string{"database", "performance", "backend"},
			Comments:    []model.Comment{},
		},
		{
			ID:          "4",
			Title:       "User Testing",
			Description: "Conduct user testing sessions for the new features and gather feedback.",
			Status:      model.StatusCompleted,
			Priority:    model.PriorityLow,
			AssigneeID:  "2",
			CreatedBy:   "1",
			DueDate:     model.Ptr(now.Add(-1 * day)),
			CreatedAt:   now.Add(-10 * day),
			UpdatedAt:   now,
			Tags:        []string{"testing", "ux", "research"},
			Comments:    []model.Comment{},
		},
	}

	notifications := []model.Notification{
		{
			ID:        "1",
			Type:      model.NotificationTaskAssigned,
			Title:     "New Task Assigned",
			Message:   `You have been assigned to "Design Landing Page"`,
			UserID:    "2",
			TaskID:    "1",
			CreatedAt: now.Add(-30 * time.Minute),
		},
		{
			ID:        "2",
			Type:      model.NotificationDueDateReminder,
			Title:     "Due Date Reminder",
			Message:   `Task "API Integration" is due tomorrow`,
			UserID:    "3",
			TaskID:    "2",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "3",
			Type:      model.NotificationTaskCompleted,
			Title:     "Task Completed",
			Message:   `Sarah Wilson completed "User Testing"`,
			UserID:    "1",
			TaskID:    "4",
			Read:      true,
			CreatedAt: now.Add(-4 * time.Hour),
		},
	}

	f := Fixture{Users: users, Tasks: tasks, Notifications: notifications}
	f.resolve()
	return f
}

// Load reads a fixture from a YAML file, validates identifier uniqueness and
// resolves the cached user joins.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML fixture document.
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decoding fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return Fixture{}, err
	}
	for i := range f.Tasks {
		if f.Tasks[i].Tags == nil {
			f.Tasks[i].Tags = []string{}
		}
		if f.Tasks[i].Comments == nil {
			f.Tasks[i].Comments = []model.Comment{}
		}
		if f.Tasks[i].UpdatedAt.Before(f.Tasks[i].CreatedAt) {
			f.Tasks[i].UpdatedAt = f.Tasks[i].CreatedAt
		}
	}
	f.resolve()
	return f, nil
}

func (f Fixture) validate() error {
	kinds := []struct {
		name string
		ids  []string
	}{
		{"user", collect(f.Users, func(u model.User) string { return u.ID })},
		{"task", collect(f.Tasks, func(t model.Task) string { return t.ID })},
		{"notification", collect(f.Notifications, func(n model.Notification) string { return n.ID })},
	}
	for _, k := range kinds {
		seen := make(map[string]bool, len(k.ids))
		for _, id := range k.ids {
			if seen[id] {
				return fmt.Errorf("%w: %s %q", ErrDuplicateID, k.name, id)
			}
			seen[id] = true
		}
	}
	return nil
}

func collect[T any](items []T, key func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = key(it)
	}
	return out
}

// resolve fills the cached joins on tasks and comments from f.Users.
func (f Fixture) resolve() {
	byID := make(map[string]model.User, len(f.Users))
	for _, u := range f.Users {
		byID[u.ID] = u
	}
	lookup := func(id string) *model.User {
		if u, ok := byID[id]; ok && id != "" {
			return &u
		}
		return nil
	}
	for i := range f.Tasks {
		t := &f.Tasks[i]
		t.Assignee = lookup(t.AssigneeID)
		t.Creator = lookup(t.CreatedBy)
		for j := range t.Comments {
			t.Comments[j].User = lookup(t.Comments[j].UserID)
		}
	}
}
