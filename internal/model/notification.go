package model

import "time"

// NotificationType classifies what triggered a notification.
type NotificationType string

// Notification type constants.
const (
	NotificationTaskAssigned    NotificationType = "task_assigned"
	NotificationTaskCompleted   NotificationType = "task_completed"
	NotificationCommentAdded    NotificationType = "comment_added"
	NotificationDueDateReminder NotificationType = "due_date_reminder"
)

// Notification represents an alert surfaced to a user about activity on a task.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" yaml:"id"`

	// Type classifies the triggering event.
	Type NotificationType `json:"type" yaml:"type"`

	// Title is the short heading.
	Title string `json:"title" yaml:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message" yaml:"message"`

	// UserID is the recipient.
	UserID string `json:"user_id" yaml:"user_id"`

	// TaskID links this notification to the originating task, if any.
	TaskID string `json:"task_id,omitempty" yaml:"task_id,omitempty"`

	// Read indicates whether the user has seen this notification. It is the
	// only field that changes after creation.
	Read bool `json:"read" yaml:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NotificationDraft is creation input for a notification.
type NotificationDraft struct {
	Type    NotificationType
	Title   string
	Message string
	UserID  string
	TaskID  string
	Read    bool
}
