package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

func newFeed(userID string) *store.NotificationFeed {
	return store.NewNotificationFeed(testutil.Fixture().Notifications, userID,
		store.WithClock(testutil.NewClock()),
		store.WithIDGenerator(ident.NewSequence("n")),
	)
}

func unread(ns []model.Notification) int {
	count := 0
	for _, n := range ns {
		if !n.Read {
			count++
		}
	}
	return count
}

func TestFeedScopedToRecipient(t *testing.T) {
	feed := newFeed("2")
	items := feed.Notifications()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].UserID)
	assert.Equal(t, "2", feed.UserID())

	assert.Equal(t, 0, newFeed("").Len())
	assert.Equal(t, 0, newFeed("nobody").Len())
}

func TestFeedAddPrepends(t *testing.T) {
	feed := newFeed("1")

	first := feed.Add(model.NotificationDraft{Type: model.NotificationTaskAssigned, Title: "a", UserID: "1"})
	second := feed.Add(model.NotificationDraft{Type: model.NotificationCommentAdded, Title: "b", UserID: "3"})

	items := feed.Notifications()
	require.Len(t, items, 3)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, "3", items[0].UserID, "added notifications are not re-filtered")
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestFeedAddAvoidsTakenIDs(t *testing.T) {
	seed := []model.Notification{{ID: "n1", UserID: "1"}}
	feed := store.NewNotificationFeed(seed, "1", store.WithIDGenerator(ident.NewSequence("n")))

	n := feed.Add(model.NotificationDraft{Title: "x"})
	assert.Equal(t, "n2", n.ID)
}

func TestFeedMarkAsRead(t *testing.T) {
	feed := newFeed("2")
	n := feed.Add(model.NotificationDraft{Title: "x", UserID: "2"})
	require.Equal(t, 2, feed.UnreadCount())

	assert.True(t, feed.MarkAsRead(n.ID))
	assert.Equal(t, 1, feed.UnreadCount())

	assert.True(t, feed.MarkAsRead(n.ID), "marking twice is harmless")
	assert.Equal(t, 1, feed.UnreadCount())

	assert.False(t, feed.MarkAsRead("missing"))
	assert.Equal(t, 1, feed.UnreadCount())
}

func TestFeedMarkAllAsRead(t *testing.T) {
	feed := newFeed("3")
	feed.Add(model.NotificationDraft{Title: "x"})
	feed.Add(model.NotificationDraft{Title: "y"})

	feed.MarkAllAsRead()
	assert.Equal(t, 0, feed.UnreadCount())
	for _, n := range feed.Notifications() {
		assert.True(t, n.Read)
	}
}

func TestFeedUnreadCountTracksEveryOperation(t *testing.T) {
	feed := newFeed("1")
	ops := []func(){
		func() { feed.Add(model.NotificationDraft{Title: "a"}) },
		func() { feed.Add(model.NotificationDraft{Title: "b", Read: true}) },
		func() { feed.MarkAsRead(feed.Notifications()[0].ID) },
		func() { feed.Add(model.NotificationDraft{Title: "c"}) },
		func() { feed.MarkAsRead("nope") },
		func() { feed.MarkAllAsRead() },
		func() { feed.Add(model.NotificationDraft{Title: "d"}) },
	}
	for i, op := range ops {
		op()
		assert.Equal(t, unread(feed.Notifications()), feed.UnreadCount(), "after op %d", i)
	}
}

func TestFeedReadsAreCopies(t *testing.T) {
	feed := newFeed("2")
	items := feed.Notifications()
	items[0].Read = true

	assert.Equal(t, 1, feed.UnreadCount())
}
