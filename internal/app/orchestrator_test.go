package app_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/app"
	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/fixture"
	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/logging"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

type harness struct {
	app   *app.Orchestrator
	repo  *store.TaskRepository
	users *store.UserDirectory
	sess  *session.Manager
	vault *credential.Vault
	logs  *bytes.Buffer
}

func newHarness(t *testing.T, fx fixture.Fixture) harness {
	t.Helper()

	repo, users, clock := testutil.NewTestRepository(t, fx.Users, fx.Tasks)
	sess := session.NewManager(users,
		session.NewMockVerifier(users, "password"),
		session.NewJWTIssuer(session.JWTConfig{Secret: "s", Issuer: "taskflow"}, clock),
		session.WithClock(clock),
		session.WithIDGenerator(ident.NewSequence("u")),
	)
	vault := credential.NewVault(keyring.NewArrayKeyring(nil))
	logs := &bytes.Buffer{}

	o := app.New(users, repo, sess, fx.Notifications,
		app.WithLogger(logging.New("debug", logs)),
		app.WithVault(vault),
		app.WithClock(clock),
		app.WithIDGenerator(ident.NewSequence("n")),
	)
	return harness{app: o, repo: repo, users: users, sess: sess, vault: vault, logs: logs}
}

func signedIn(t *testing.T, email string) harness {
	t.Helper()
	h := newHarness(t, testutil.Fixture())
	require.NoError(t, h.app.Login(email, "password"))
	return h
}

func TestCreateWithAssigneeNotifiesAssignee(t *testing.T) {
	u1 := model.User{ID: "U1", Name: "Una", Email: "una@taskflow.com", Role: model.RoleMember}
	h := newHarness(t, fixture.Fixture{Users: []model.User{u1}})
	require.NoError(t, h.app.Login("una@taskflow.com", "password"))
	require.Empty(t, h.app.Notifications())

	task, err := h.app.CreateTask(model.TaskDraft{Title: "X", AssigneeID: "U1"})
	require.NoError(t, err)

	feed := h.app.Notifications()
	require.Len(t, feed, 1)
	assert.Equal(t, model.NotificationTaskAssigned, feed[0].Type)
	assert.Equal(t, "U1", feed[0].UserID)
	assert.Equal(t, task.ID, feed[0].TaskID)
	assert.Contains(t, feed[0].Message, "X")
	assert.False(t, feed[0].Read)
	assert.Equal(t, 1, h.app.UnreadCount())
}

func TestCreateWithoutAssigneeAddsNothing(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	before := len(h.app.Notifications())

	task, err := h.app.CreateTask(model.TaskDraft{Title: "Solo"})
	require.NoError(t, err)

	assert.Equal(t, "1", task.CreatedBy, "creator defaults to the acting user")
	assert.Len(t, h.app.Notifications(), before)
}

func TestIntentsRequireSignedInUser(t *testing.T) {
	h := newHarness(t, testutil.Fixture())

	_, err := h.app.CreateTask(model.TaskDraft{Title: "X"})
	assert.ErrorIs(t, err, app.ErrNotAuthenticated)

	_, err = h.app.UpdateTask("1", model.TaskPatch{Title: model.Ptr("Y")})
	assert.ErrorIs(t, err, app.ErrNotAuthenticated)

	_, err = h.app.DeleteTask("1")
	assert.ErrorIs(t, err, app.ErrNotAuthenticated)

	_, err = h.app.AddComment("1", "hi")
	assert.ErrorIs(t, err, app.ErrNotAuthenticated)

	assert.Len(t, h.app.Tasks(), 4, "nothing changed")
}

func TestStatusChangeNotifiesActingUser(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	before := len(h.app.Notifications())

	ok, err := h.app.ChangeStatus("1", model.StatusCompleted)
	require.NoError(t, err)
	require.True(t, ok)

	feed := h.app.Notifications()
	require.Len(t, feed, before+1)
	n := feed[0]
	assert.Equal(t, model.NotificationTaskCompleted, n.Type)
	assert.Equal(t, "1", n.UserID, "addressed to the acting user, not the assignee")
	assert.Equal(t, "1", n.TaskID)
	assert.Equal(t, `Task "Design Landing Page" status changed to completed`, n.Message)

	task, _ := h.repo.Get("1")
	assert.Equal(t, model.StatusCompleted, task.Status)
}

func TestStatusChangeQuotesOpenTaskTitle(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	require.True(t, h.app.SelectTask("2"))

	_, err := h.app.ChangeStatus("3", model.StatusReview)
	require.NoError(t, err)

	assert.Equal(t, `Task "API Integration" status changed to review`, h.app.Notifications()[0].Message)
}

func TestUpdateWithoutStatusAddsNothing(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	before := len(h.app.Notifications())

	ok, err := h.app.UpdateTask("1", model.TaskPatch{Title: model.Ptr("Renamed")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, h.app.Notifications(), before)
}

func TestUpdateUnknownTaskIsSilent(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	before := h.app.Tasks()
	feedBefore := h.app.Notifications()

	ok, err := h.app.ChangeStatus("missing", model.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, before, h.app.Tasks())
	assert.Equal(t, feedBefore, h.app.Notifications())
}

func TestDeleteThenUpdateIsNoOp(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	require.True(t, h.app.SelectTask("2"))

	ok, err := h.app.DeleteTask("2")
	require.NoError(t, err)
	require.True(t, ok)

	_, open := h.app.SelectedTask()
	assert.False(t, open, "deleting the open task closes it")

	length := len(h.app.Tasks())
	ok, err = h.app.UpdateTask("2", model.TaskPatch{Title: model.Ptr("ghost")})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, h.app.Tasks(), length)

	ok, err = h.app.DeleteTask("2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteOtherTaskKeepsSelection(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	require.True(t, h.app.SelectTask("1"))

	_, err := h.app.DeleteTask("3")
	require.NoError(t, err)

	open, ok := h.app.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, "1", open.ID)
}

func TestSelectedTaskReflectsUpdates(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	assert.False(t, h.app.SelectTask("missing"))
	require.True(t, h.app.SelectTask("1"))

	_, err := h.app.UpdateTask("1", model.TaskPatch{Title: model.Ptr("Fresh")})
	require.NoError(t, err)

	open, ok := h.app.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, "Fresh", open.Title)

	h.app.CloseTask()
	_, ok = h.app.SelectedTask()
	assert.False(t, ok)
}

func TestAddComment(t *testing.T) {
	h := signedIn(t, "sarah@taskflow.com")

	c, err := h.app.AddComment("1", "Looks good")
	require.NoError(t, err)
	assert.Equal(t, "2", c.UserID)
	require.NotNil(t, c.User)
	assert.Equal(t, "Sarah Wilson", c.User.Name)

	task, _ := h.repo.Get("1")
	require.Len(t, task.Comments, 2)
	assert.Equal(t, "Looks good", task.Comments[1].Content)

	_, err = h.app.AddComment("1", "   ")
	assert.ErrorIs(t, err, app.ErrEmptyComment)

	_, err = h.app.AddComment("missing", "hello")
	assert.ErrorIs(t, err, app.ErrTaskNotFound)
}

func TestLoginScopesFeedToUser(t *testing.T) {
	h := newHarness(t, testutil.Fixture())
	assert.Empty(t, h.app.Notifications(), "anonymous feed is empty")

	require.NoError(t, h.app.Login("sarah@taskflow.com", "password"))
	feed := h.app.Notifications()
	require.Len(t, feed, 1)
	assert.Equal(t, "2", feed[0].UserID)
	assert.Equal(t, 1, h.app.UnreadCount())

	h.app.MarkAllAsRead()
	assert.Equal(t, 0, h.app.UnreadCount())

	h.app.Logout()
	assert.Empty(t, h.app.Notifications())

	require.NoError(t, h.app.Login("mike@taskflow.com", "password"))
	feed = h.app.Notifications()
	require.Len(t, feed, 1)
	assert.Equal(t, "3", feed[0].UserID)
}

func TestLoginFailureKeepsState(t *testing.T) {
	h := signedIn(t, "sarah@taskflow.com")
	feed := h.app.Notifications()

	err := h.app.Login("john@taskflow.com", "wrong")
	require.ErrorIs(t, err, session.ErrInvalidCredentials)

	assert.Equal(t, "2", h.app.Session().User.ID)
	assert.Equal(t, feed, h.app.Notifications())
	assert.Contains(t, h.logs.String(), "login failed")
}

func TestRegisterSignsInWithEmptyFeed(t *testing.T) {
	h := newHarness(t, testutil.Fixture())

	require.NoError(t, h.app.Register("Ada", "ada@taskflow.com", "pw"))
	assert.True(t, h.app.Session().IsAuthenticated)
	assert.Empty(t, h.app.Notifications())
	assert.Len(t, h.app.Users(), 5)

	err := h.app.Register("Ada", "ada@taskflow.com", "pw")
	assert.ErrorIs(t, err, session.ErrEmailAlreadyExists)
	assert.Len(t, h.app.Users(), 5)
}

func TestMarkAsRead(t *testing.T) {
	h := signedIn(t, "mike@taskflow.com")
	require.Equal(t, 1, h.app.UnreadCount())

	assert.False(t, h.app.MarkAsRead("missing"))
	assert.True(t, h.app.MarkAsRead("2"))
	assert.Equal(t, 0, h.app.UnreadCount())
}

func TestSessionPersistsAcrossRestarts(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")

	blob, err := h.vault.LoadSession()
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	fx := testutil.Fixture()
	repo, users, _ := testutil.NewTestRepository(t, fx.Users, fx.Tasks)
	later := ident.NewStepClock(testutil.Epoch.Add(time.Hour), time.Second)
	sess := session.NewManager(users,
		session.NewMockVerifier(users, "password"),
		session.NewJWTIssuer(session.JWTConfig{Secret: "s", Issuer: "taskflow"}, later),
	)
	restarted := app.New(users, repo, sess, fx.Notifications, app.WithVault(h.vault))

	require.True(t, restarted.Restore())
	assert.Equal(t, "1", restarted.Session().User.ID)
	assert.Len(t, restarted.Notifications(), 1)

	restarted.Logout()
	blob, err = h.vault.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, blob)
	assert.False(t, restarted.Restore())
}

func TestRestoreWithoutVault(t *testing.T) {
	fx := testutil.Fixture()
	repo, users, _ := testutil.NewTestRepository(t, fx.Users, fx.Tasks)
	sess := session.NewManager(users, session.NewMockVerifier(users, "password"), session.NewJWTIssuer(session.JWTConfig{}, nil))

	assert.False(t, app.New(users, repo, sess, nil).Restore())
}

func TestNavigate(t *testing.T) {
	h := signedIn(t, "john@taskflow.com")
	assert.Equal(t, app.ViewDashboard, h.app.View())

	h.app.Navigate(app.ViewCreateTask)
	assert.Equal(t, app.ViewTasks, h.app.View())
	assert.True(t, h.app.Creating())

	_, err := h.app.CreateTask(model.TaskDraft{Title: "From form"})
	require.NoError(t, err)
	assert.False(t, h.app.Creating(), "creating closes the form")

	h.app.Navigate(app.ViewCreateTask)
	h.app.CancelCreate()
	assert.False(t, h.app.Creating())

	h.app.Navigate(app.ParseView("notifications"))
	assert.Equal(t, app.ViewNotifications, h.app.View())
	assert.Equal(t, "notifications", h.app.View().String())
	assert.Equal(t, app.ViewDashboard, app.ParseView("nowhere"))

	h.app.Logout()
	assert.Equal(t, app.ViewDashboard, h.app.View())
}

func TestLoadingState(t *testing.T) {
	fx := testutil.Fixture()
	users := store.NewUserDirectory(fx.Users)
	repo := store.NewTaskRepository(fx.Tasks, users)
	sess := session.NewManager(users, session.NewMockVerifier(users, "password"), session.NewJWTIssuer(session.JWTConfig{}, nil))
	o := app.New(users, repo, sess, fx.Notifications)

	assert.True(t, o.Loading())
	assert.Empty(t, o.Tasks())

	require.NoError(t, o.Load(context.Background()))
	assert.False(t, o.Loading())
	assert.Len(t, o.Tasks(), 4)
}

func TestFeedFollowsSessionUser(t *testing.T) {
	h := newHarness(t, testutil.Fixture())
	require.Empty(t, h.app.Notifications())

	_, err := h.sess.Login("sarah@taskflow.com", "password")
	require.NoError(t, err)

	feed := h.app.Notifications()
	require.NotEmpty(t, feed)
	for _, n := range feed {
		assert.Equal(t, "2", n.UserID)
	}

	h.sess.Logout()
	assert.Empty(t, h.app.Notifications())
}
