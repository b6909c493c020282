package store

import (
	"sync"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
)

// NotificationFeed is the notification list of one session, most recent
// first. The recipient filter is applied once, when the feed is built; Add
// prepends whatever it is given, whoever the recipient.
type NotificationFeed struct {
	mu     sync.RWMutex
	items  []model.Notification
	userID string

	clock ident.Clock
	ids   ident.IDGenerator
}

// NewNotificationFeed builds the feed for userID from the notifications in
// seed addressed to that user, preserving seed order.
func NewNotificationFeed(seed []model.Notification, userID string, opts ...Option) *NotificationFeed {
	o := buildOptions(opts)

	items := make([]model.Notification, 0, len(seed))
	if userID != "" {
		for _, n := range seed {
			if n.UserID == userID {
				items = append(items, n)
			}
		}
	}

	return &NotificationFeed{
		items:  items,
		userID: userID,
		clock:  o.clock,
		ids:    o.ids,
	}
}

// UserID returns the recipient the feed was scoped to.
func (f *NotificationFeed) UserID() string {
	return f.userID
}

// Add stamps d with a fresh id and the current time and prepends it.
func (f *NotificationFeed) Add(d model.NotificationDraft) model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := model.Notification{
		ID:        freshID(f.ids, f.taken),
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		UserID:    d.UserID,
		TaskID:    d.TaskID,
		Read:      d.Read,
		CreatedAt: f.clock.Now(),
	}
	f.items = append([]model.Notification{n}, f.items...)
	return n
}

// MarkAsRead flags the notification with the given id as read. It returns
// false if there is no such notification.
func (f *NotificationFeed) MarkAsRead(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllAsRead flags every notification as read.
func (f *NotificationFeed) MarkAllAsRead() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		f.items[i].Read = true
	}
}

// UnreadCount counts the unread notifications at the time of the call.
func (f *NotificationFeed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Notifications returns a copy of the feed, most recent first.
func (f *NotificationFeed) Notifications() []model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]model.Notification(nil), f.items...)
}

// Len returns the number of notifications in the feed.
func (f *NotificationFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.items)
}

func (f *NotificationFeed) taken(id string) bool {
	for i := range f.items {
		if f.items[i].ID == id {
			return true
		}
	}
	return false
}
