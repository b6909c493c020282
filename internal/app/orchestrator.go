// Package app composes the task repository, the session manager and the
// notification feed into the intents the screens dispatch.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/internal/store"
)

var (
	// ErrNotAuthenticated is returned by intents that need a signed-in user.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrTaskNotFound is returned when commenting on a task that does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrEmptyComment is returned when a comment has no content.
	ErrEmptyComment = errors.New("comment is empty")
)

// SessionVault persists the session snapshot between runs.
type SessionVault interface {
	SaveSession(blob []byte) error
	LoadSession() ([]byte, error)
	ClearSession() error
}

// ViewState is the screen currently shown.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewTasks
	ViewNotifications
	ViewCalendar
	ViewTeam
	ViewAnalytics
	ViewSettings
	// ViewCreateTask is a navigation target only: it opens the create form
	// over the task list.
	ViewCreateTask
)

var viewNames = map[ViewState]string{
	ViewDashboard:     "dashboard",
	ViewTasks:         "tasks",
	ViewNotifications: "notifications",
	ViewCalendar:      "calendar",
	ViewTeam:          "team",
	ViewAnalytics:     "analytics",
	ViewSettings:      "settings",
	ViewCreateTask:    "create-task",
}

// String returns the route name of the view.
func (v ViewState) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return "dashboard"
}

// ParseView maps a route name to its view. Unknown names fall back to the
// dashboard.
func ParseView(name string) ViewState {
	for v, n := range viewNames {
		if n == name {
			return v
		}
	}
	return ViewDashboard
}

// Orchestrator turns user intents into store mutations. Task mutations
// write their side-effect notifications into the current user's feed.
type Orchestrator struct {
	users   *store.UserDirectory
	tasks   *store.TaskRepository
	session *session.Manager
	seed    []model.Notification

	vault SessionVault
	log   logrus.FieldLogger
	clock ident.Clock
	ids   ident.IDGenerator

	mu         sync.Mutex
	feed       *store.NotificationFeed
	view       ViewState
	selectedID string
	creating   bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithVault persists sessions across runs.
func WithVault(v SessionVault) Option {
	return func(o *Orchestrator) {
		o.vault = v
	}
}

// WithClock injects the time source for notifications.
func WithClock(c ident.Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithIDGenerator injects the identifier source for notifications.
func WithIDGenerator(g ident.IDGenerator) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.ids = g
		}
	}
}

// New creates an orchestrator. notifications is the seed every feed is
// built from; the feed starts scoped to whoever sess reports as signed in.
func New(
	users *store.UserDirectory,
	tasks *store.TaskRepository,
	sess *session.Manager,
	notifications []model.Notification,
	opts ...Option,
) *Orchestrator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	o := &Orchestrator{
		users:   users,
		tasks:   tasks,
		session: sess,
		seed:    append([]model.Notification(nil), notifications...),
		log:     discard,
		clock:   ident.SystemClock{},
		ids:     ident.UUIDGenerator{},
		view:    ViewDashboard,
	}
	for _, opt := range opts {
		opt(o)
	}

	userID := ""
	if u, ok := sess.User(); ok {
		userID = u.ID
	}
	o.feed = o.newFeed(userID)
	return o
}

// Load runs the task repository's initial fetch.
func (o *Orchestrator) Load(ctx context.Context) error {
	if err := o.tasks.Load(ctx); err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	o.log.WithField("tasks", o.tasks.Len()).Debug("tasks loaded")
	return nil
}

// Loading reports whether the initial fetch is still pending.
func (o *Orchestrator) Loading() bool {
	return o.tasks.State() == store.StateLoading
}

// Session returns the current session.
func (o *Orchestrator) Session() model.Session {
	return o.session.Current()
}

// Users returns every known user, for assignee pickers.
func (o *Orchestrator) Users() []model.User {
	return o.users.All()
}

// Tasks returns every task, most recent first.
func (o *Orchestrator) Tasks() []model.Task {
	return o.tasks.All()
}

// Notifications returns the current feed, most recent first.
func (o *Orchestrator) Notifications() []model.Notification {
	return o.currentFeed().Notifications()
}

// UnreadCount counts unread notifications in the current feed.
func (o *Orchestrator) UnreadCount() int {
	return o.currentFeed().UnreadCount()
}

// Login signs in and rebuilds the feed for the user.
func (o *Orchestrator) Login(email, password string) error {
	s, err := o.session.Login(email, password)
	if err != nil {
		o.log.WithField("email", email).WithError(err).Warn("login failed")
		return err
	}
	o.signedIn(s)
	o.log.WithField("user_id", s.User.ID).Info("signed in")
	return nil
}

// Register creates an account, signs it in and rebuilds the feed.
func (o *Orchestrator) Register(name, email, password string) error {
	s, err := o.session.Register(name, email, password)
	if err != nil {
		o.log.WithField("email", email).WithError(err).Warn("registration failed")
		return err
	}
	o.signedIn(s)
	o.log.WithField("user_id", s.User.ID).Info("registered")
	return nil
}

// Logout signs out, empties the feed and forgets the persisted session.
func (o *Orchestrator) Logout() {
	o.session.Logout()

	o.mu.Lock()
	o.feed = o.newFeed("")
	o.selectedID = ""
	o.creating = false
	o.view = ViewDashboard
	o.mu.Unlock()

	if o.vault != nil {
		if err := o.vault.ClearSession(); err != nil {
			o.log.WithError(err).Warn("clearing persisted session")
		}
	}
	o.log.Info("signed out")
}

// Restore signs back in from the persisted session, if any. It reports
// whether a session was restored.
func (o *Orchestrator) Restore() bool {
	if o.vault == nil {
		return false
	}
	blob, err := o.vault.LoadSession()
	if err != nil {
		o.log.WithError(err).Warn("loading persisted session")
		return false
	}
	if !o.session.Restore(blob) {
		return false
	}

	u, _ := o.session.User()
	o.mu.Lock()
	o.feed = o.newFeed(u.ID)
	o.mu.Unlock()

	o.log.WithField("user_id", u.ID).Info("session restored")
	return true
}

// CreateTask creates a task as the current user. A draft naming an
// assignee notifies that assignee.
func (o *Orchestrator) CreateTask(d model.TaskDraft) (model.Task, error) {
	user, err := o.requireUser()
	if err != nil {
		return model.Task{}, err
	}
	if d.CreatedBy == "" {
		d.CreatedBy = user.ID
	}

	t := o.tasks.Create(d)
	log := o.log.WithFields(logrus.Fields{"task_id": t.ID, "user_id": user.ID})
	log.Info("task created")

	o.mu.Lock()
	o.creating = false
	o.mu.Unlock()

	if d.AssigneeID != "" {
		n := o.currentFeed().Add(model.NotificationDraft{
			Type:    model.NotificationTaskAssigned,
			Title:   "New Task Assigned",
			Message: fmt.Sprintf(`You have been assigned to "%s"`, t.Title),
			UserID:  d.AssigneeID,
			TaskID:  t.ID,
		})
		log.WithField("type", n.Type).Debug("notification added")
	}
	return t, nil
}

// UpdateTask merges p into the task. It reports false, adding nothing,
// when the task does not exist. A patch carrying a status adds a
// task_completed notification addressed to the acting user; its message
// names the task open in the detail view, if any.
func (o *Orchestrator) UpdateTask(id string, p model.TaskPatch) (bool, error) {
	user, err := o.requireUser()
	if err != nil {
		return false, err
	}

	title := o.notificationTitle(id)
	if !o.tasks.Update(id, p) {
		o.log.WithField("task_id", id).Debug("update of unknown task ignored")
		return false, nil
	}

	log := o.log.WithFields(logrus.Fields{"task_id": id, "user_id": user.ID})
	log.Info("task updated")

	if p.Status != nil {
		n := o.currentFeed().Add(model.NotificationDraft{
			Type:    model.NotificationTaskCompleted,
			Title:   "Task Updated",
			Message: fmt.Sprintf(`Task "%s" status changed to %s`, title, *p.Status),
			UserID:  user.ID,
			TaskID:  id,
		})
		log.WithField("type", n.Type).Debug("notification added")
	}
	return true, nil
}

// ChangeStatus moves a task to status.
func (o *Orchestrator) ChangeStatus(id string, status model.TaskStatus) (bool, error) {
	return o.UpdateTask(id, model.TaskPatch{Status: &status})
}

// DeleteTask removes a task, closing it if it is open in the detail view.
func (o *Orchestrator) DeleteTask(id string) (bool, error) {
	user, err := o.requireUser()
	if err != nil {
		return false, err
	}

	o.mu.Lock()
	if o.selectedID == id {
		o.selectedID = ""
	}
	o.mu.Unlock()

	if !o.tasks.Delete(id) {
		return false, nil
	}
	o.log.WithFields(logrus.Fields{"task_id": id, "user_id": user.ID}).Info("task deleted")
	return true, nil
}

// AddComment appends a comment by the current user.
func (o *Orchestrator) AddComment(taskID, content string) (model.Comment, error) {
	user, err := o.requireUser()
	if err != nil {
		return model.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, ErrEmptyComment
	}

	c, ok := o.tasks.AddComment(taskID, user.ID, content)
	if !ok {
		return model.Comment{}, fmt.Errorf("commenting on %s: %w", taskID, ErrTaskNotFound)
	}
	o.log.WithFields(logrus.Fields{"task_id": taskID, "user_id": user.ID}).Info("comment added")
	return c, nil
}

// MarkAsRead flags one notification as read.
func (o *Orchestrator) MarkAsRead(id string) bool {
	return o.currentFeed().MarkAsRead(id)
}

// MarkAllAsRead flags every notification as read.
func (o *Orchestrator) MarkAllAsRead() {
	o.currentFeed().MarkAllAsRead()
}

// SelectTask opens a task in the detail view. It returns false if the
// task does not exist.
func (o *Orchestrator) SelectTask(id string) bool {
	if _, ok := o.tasks.Get(id); !ok {
		return false
	}
	o.mu.Lock()
	o.selectedID = id
	o.mu.Unlock()
	return true
}

// CloseTask closes the detail view.
func (o *Orchestrator) CloseTask() {
	o.mu.Lock()
	o.selectedID = ""
	o.mu.Unlock()
}

// SelectedTask returns the task open in the detail view, as currently
// stored.
func (o *Orchestrator) SelectedTask() (model.Task, bool) {
	o.mu.Lock()
	id := o.selectedID
	o.mu.Unlock()

	if id == "" {
		return model.Task{}, false
	}
	return o.tasks.Get(id)
}

// Navigate switches screens. Navigating to ViewCreateTask shows the task
// list with the create form open.
func (o *Orchestrator) Navigate(v ViewState) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if v == ViewCreateTask {
		o.creating = true
		v = ViewTasks
	}
	o.view = v
}

// View returns the current screen.
func (o *Orchestrator) View() ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.view
}

// Creating reports whether the create form is open.
func (o *Orchestrator) Creating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.creating
}

// CancelCreate closes the create form.
func (o *Orchestrator) CancelCreate() {
	o.mu.Lock()
	o.creating = false
	o.mu.Unlock()
}

func (o *Orchestrator) requireUser() (model.User, error) {
	u, ok := o.session.User()
	if !ok {
		return model.User{}, ErrNotAuthenticated
	}
	return u, nil
}

func (o *Orchestrator) signedIn(s model.Session) {
	o.mu.Lock()
	o.feed = o.newFeed(s.User.ID)
	o.mu.Unlock()

	if o.vault == nil {
		return
	}
	blob, err := session.Encode(s)
	if err == nil {
		err = o.vault.SaveSession(blob)
	}
	if err != nil {
		o.log.WithError(err).Warn("persisting session")
	}
}

// notificationTitle is the title quoted by a status-change notification:
// the open task's title when one is open, else the target's own.
func (o *Orchestrator) notificationTitle(id string) string {
	if t, ok := o.SelectedTask(); ok {
		return t.Title
	}
	if t, ok := o.tasks.Get(id); ok {
		return t.Title
	}
	return ""
}

// currentFeed returns the feed, rescoping it first if the session manager
// moved to another user behind the orchestrator's back.
func (o *Orchestrator) currentFeed() *store.NotificationFeed {
	userID := ""
	if u, ok := o.session.User(); ok {
		userID = u.ID
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.feed.UserID() != userID {
		o.feed = o.newFeed(userID)
	}
	return o.feed
}

func (o *Orchestrator) newFeed(userID string) *store.NotificationFeed {
	return store.NewNotificationFeed(o.seed, userID,
		store.WithClock(o.clock),
		store.WithIDGenerator(o.ids),
	)
}
