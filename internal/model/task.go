package model

import "time"

// TaskStatus is the workflow column a task currently sits in.
type TaskStatus string

// Task status constants, in board order.
const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every status in board order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusCompleted}

// Label returns the human-readable column title for the status.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Next returns the following board column, wrapping from completed back
// to todo.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusTodo
}

// Priority is the urgency level of a task.
type Priority string

// Priority constants, lowest first.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Label returns the capitalized priority name.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return string(p)
	}
}

// Task is a unit of work on the board.
type Task struct {
	// ID is the repository-assigned identifier; immutable after creation.
	ID string `json:"id" yaml:"id"`

	// Title is the short summary shown on cards.
	Title string `json:"title" yaml:"title"`

	// Description is the free-form body text.
	Description string `json:"description" yaml:"description"`

	// Status is the current workflow column (use Status* constants).
	Status TaskStatus `json:"status" yaml:"status"`

	// Priority is the urgency level (use Priority* constants).
	Priority Priority `json:"priority" yaml:"priority"`

	// AssigneeID references the assigned user, empty when unassigned.
	AssigneeID string `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`

	// Assignee is the cached join of AssigneeID. It is only recomputed on
	// create and on updates that carry an assignee change, so it can lag
	// behind AssigneeID.
	Assignee *User `json:"assignee,omitempty" yaml:"-"`

	// CreatedBy references the user who created the task.
	CreatedBy string `json:"created_by" yaml:"created_by"`

	// Creator is the cached join of CreatedBy, resolved on create.
	Creator *User `json:"creator,omitempty" yaml:"-"`

	// DueDate is the optional deadline.
	DueDate *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`

	// CreatedAt is when the task entered the repository.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is bumped on every successful mutation; never before CreatedAt.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Tags are free-form labels in user-entered order.
	Tags []string `json:"tags" yaml:"tags"`

	// Comments is the append-only discussion thread, oldest first.
	Comments []Comment `json:"comments" yaml:"comments"`
}

// Overdue reports whether the task is past its due date at now and not yet completed.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// Clone returns a deep copy so callers can never alias repository state.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	if t.Creator != nil {
		u := *t.Creator
		c.Creator = &u
	}
	c.Tags = append([]string(nil), t.Tags...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.Comments = make([]Comment, len(t.Comments))
	for i, cm := range t.Comments {
		c.Comments[i] = cm.Clone()
	}
	return c
}

// Comment is a single entry in a task's discussion thread.
type Comment struct {
	ID      string `json:"id" yaml:"id"`
	TaskID  string `json:"task_id" yaml:"task_id"`
	UserID  string `json:"user_id" yaml:"user_id"`
	Content string `json:"content" yaml:"content"`

	// User is the cached join of UserID, resolved when the comment is added.
	User *User `json:"user,omitempty" yaml:"-"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Clone returns a copy that does not share the cached user.
func (c Comment) Clone() Comment {
	out := c
	if c.User != nil {
		u := *c.User
		out.User = &u
	}
	return out
}

// TaskDraft is creation input: a task without server-assigned fields.
type TaskDraft struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	AssigneeID  string
	CreatedBy   string
	DueDate     *time.Time
	Tags        []string
}

// TaskPatch is a partial update. Nil fields are left untouched.
//
// AssigneeID distinguishes omission (nil) from an explicit unassign (pointer
// to ""). Only a non-nil AssigneeID re-resolves the Assignee join. DueDate
// follows the same rule: a pointer to the zero time clears the deadline.
// Tags is replaced when non-nil; an empty non-nil slice clears it.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *Priority
	AssigneeID  *string
	DueDate     *time.Time
	Tags        []string
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}
