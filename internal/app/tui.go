package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/keys"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/internal/theme"
	"github.com/nhle/taskflow/internal/ui"
	"github.com/nhle/taskflow/internal/ui/auth"
	"github.com/nhle/taskflow/internal/ui/dashboard"
	"github.com/nhle/taskflow/internal/ui/detail"
	helpview "github.com/nhle/taskflow/internal/ui/help"
	"github.com/nhle/taskflow/internal/ui/notifications"
	"github.com/nhle/taskflow/internal/ui/prompt"
	"github.com/nhle/taskflow/internal/ui/taskform"
	"github.com/nhle/taskflow/internal/ui/tasklist"
)

// loadedMsg reports the end of the initial task fetch.
type loadedMsg struct {
	err error
}

// overlay is a panel drawn over the current screen.
type overlay int

const (
	overlayNone overlay = iota
	overlayDetail
	overlayForm
	overlayComment
	overlayHelp
)

var tabs = []ViewState{
	ViewDashboard, ViewTasks, ViewNotifications,
	ViewCalendar, ViewTeam, ViewAnalytics, ViewSettings,
}

// Model is the root Bubble Tea model. It routes keys to the active screen
// and turns screen messages into orchestrator intents.
type Model struct {
	app  *Orchestrator
	ctx  context.Context
	keys *keys.KeyMap
	now  func() time.Time

	layout  ui.Layout
	ready   bool
	overlay overlay
	status  string

	auth          auth.Model
	dashboard     dashboard.Model
	taskList      tasklist.Model
	detail        detail.Model
	form          taskform.Model
	comment       prompt.Model
	helpView      helpview.Model
	notifications notifications.Model
}

// NewModel creates the root model over o. ctx bounds the initial load.
func NewModel(ctx context.Context, o *Orchestrator) Model {
	k := keys.DefaultKeyMap()
	m := Model{
		app:           o,
		ctx:           ctx,
		keys:          k,
		now:           time.Now,
		auth:          auth.New(80, 24),
		dashboard:     dashboard.New(80, 24),
		taskList:      tasklist.New(k, 80, 24),
		detail:        detail.New(k, 80, 24),
		form:          taskform.New(80, 24),
		comment:       prompt.New("Add Comment", "Write a comment...", 80, 24),
		helpView:      helpview.New(k, 80, 24),
		notifications: notifications.New(k, 80, 24),
	}
	m.refresh()
	return m
}

// Init starts the task fetch and, when nobody is signed in, the auth form.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load()}
	if m.app.Session().Anonymous() {
		cmds = append(cmds, m.auth.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.auth.SetSize(msg.Width, msg.Height)
		m.dashboard.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.comment.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.notifications.SetSize(w, h)
		return m.updateActive(msg)

	case loadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		cmd := m.refresh()
		return m, cmd

	case auth.LoginMsg:
		if err := m.app.Login(msg.Email, msg.Password); err != nil {
			m.auth.SetError(authError(err))
			cmd := m.auth.Start()
			return m, cmd
		}
		return m.enter()

	case auth.RegisterMsg:
		if err := m.app.Register(msg.Name, msg.Email, msg.Password); err != nil {
			m.auth.SetError(authError(err))
			cmd := m.auth.Start()
			return m, cmd
		}
		return m.enter()

	case auth.QuitMsg:
		return m, tea.Quit

	case tasklist.SelectedTaskMsg:
		return m.open(msg.TaskID)

	case detail.BackMsg:
		m.app.CloseTask()
		m.detail.Clear()
		m.overlay = overlayNone
		return m, nil

	case detail.ActionMsg:
		return m.act(msg.Action, msg.TaskID)

	case prompt.SubmitMsg:
		m.overlay = overlayDetail
		if t, ok := m.app.SelectedTask(); ok {
			_, err := m.app.AddComment(t.ID, msg.Value)
			m.setErr(err)
		}
		cmd := m.refresh()
		return m, cmd

	case prompt.CancelMsg:
		m.overlay = overlayDetail
		return m, nil

	case taskform.CreatedMsg:
		_, err := m.app.CreateTask(msg.Draft)
		m.setErr(err)
		m.overlay = overlayNone
		cmd := m.refresh()
		return m, cmd

	case taskform.UpdatedMsg:
		_, err := m.app.UpdateTask(msg.TaskID, msg.Patch)
		m.setErr(err)
		m.overlay = m.afterForm()
		cmd := m.refresh()
		return m, cmd

	case taskform.CancelMsg:
		m.app.CancelCreate()
		m.overlay = m.afterForm()
		return m, nil

	case notifications.MarkReadMsg:
		m.app.MarkAsRead(msg.ID)
		cmd := m.refresh()
		return m, cmd

	case notifications.MarkAllReadMsg:
		m.app.MarkAllAsRead()
		cmd := m.refresh()
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.app.Session().Anonymous() {
			return m.updateActive(msg)
		}
		m.status = ""
		if m.capturesKeys() {
			return m.updateActive(msg)
		}
		if next, cmd, ok := m.handleGlobalKey(msg); ok {
			return next, cmd
		}
	}

	return m.updateActive(msg)
}

// handleGlobalKey applies the keys that work on every screen. ok is false
// when the key belongs to the active screen.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Help):
		if m.overlay == overlayHelp {
			m.overlay = m.afterForm()
		} else {
			m.overlay = overlayHelp
		}
		return m, nil, true

	case m.overlay == overlayHelp && key.Matches(msg, m.keys.Back):
		m.overlay = m.afterForm()
		return m, nil, true

	case m.overlay != overlayNone:
		return m, nil, false

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Dashboard):
		m.app.Navigate(ViewDashboard)
		return m, nil, true

	case key.Matches(msg, m.keys.Tasks):
		m.app.Navigate(ViewTasks)
		return m, nil, true

	case key.Matches(msg, m.keys.Notifications):
		m.app.Navigate(ViewNotifications)
		return m, nil, true

	case key.Matches(msg, m.keys.Calendar):
		m.app.Navigate(ViewCalendar)
		return m, nil, true

	case key.Matches(msg, m.keys.Team):
		m.app.Navigate(ViewTeam)
		return m, nil, true

	case key.Matches(msg, m.keys.Analytics):
		m.app.Navigate(ViewAnalytics)
		return m, nil, true

	case key.Matches(msg, m.keys.Settings):
		m.app.Navigate(ViewSettings)
		return m, nil, true

	case key.Matches(msg, m.keys.New):
		m.app.Navigate(ViewCreateTask)
		m.overlay = overlayForm
		m.form.SetUsers(m.app.Users())
		cmd := m.form.StartCreate()
		return m, cmd, true

	case key.Matches(msg, m.keys.Logout):
		m.app.Logout()
		m.overlay = overlayNone
		m.detail.Clear()
		cmd := tea.Batch(m.refresh(), m.auth.Start())
		return m, cmd, true
	}

	if m.app.View() == ViewTasks {
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return m, nil, false
		}
		switch {
		case key.Matches(msg, m.keys.Advance):
			next, cmd := m.act(detail.ActionAdvance, t.ID)
			return next, cmd, true
		case key.Matches(msg, m.keys.Edit):
			next, cmd := m.act(detail.ActionEdit, t.ID)
			return next, cmd, true
		case key.Matches(msg, m.keys.Delete):
			next, cmd := m.act(detail.ActionDelete, t.ID)
			return next, cmd, true
		}
	}
	return m, nil, false
}

// act runs a task action from the detail panel or the task list.
func (m Model) act(action, taskID string) (Model, tea.Cmd) {
	t, ok := m.findTask(taskID)
	if !ok {
		cmd := m.refresh()
		return m, cmd
	}

	switch action {
	case detail.ActionAdvance:
		_, err := m.app.ChangeStatus(t.ID, t.Status.Next())
		m.setErr(err)
		cmd := m.refresh()
		return m, cmd

	case detail.ActionEdit:
		m.overlay = overlayForm
		m.form.SetUsers(m.app.Users())
		cmd := m.form.StartEdit(t)
		return m, cmd

	case detail.ActionDelete:
		_, err := m.app.DeleteTask(t.ID)
		m.setErr(err)
		if _, open := m.app.SelectedTask(); !open {
			m.overlay = overlayNone
			m.detail.Clear()
		}
		cmd := m.refresh()
		return m, cmd

	case detail.ActionComment:
		m.overlay = overlayComment
		cmd := m.comment.Focus()
		return m, cmd
	}
	return m, nil
}

// open shows a task in the detail panel.
func (m Model) open(taskID string) (Model, tea.Cmd) {
	if !m.app.SelectTask(taskID) {
		return m, nil
	}
	if t, ok := m.app.SelectedTask(); ok {
		m.detail.SetTask(t)
	}
	m.overlay = overlayDetail
	return m, nil
}

// enter leaves the auth screen after a successful sign-in.
func (m Model) enter() (Model, tea.Cmd) {
	m.status = ""
	m.overlay = overlayNone
	cmd := m.refresh()
	return m, cmd
}

// updateActive forwards msg to whatever currently has focus.
func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.app.Session().Anonymous() {
		m.auth, cmd = m.auth.Update(msg)
		return m, cmd
	}

	switch m.overlay {
	case overlayDetail:
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	case overlayForm:
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case overlayComment:
		m.comment, cmd = m.comment.Update(msg)
		return m, cmd
	case overlayHelp:
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	}

	switch m.app.View() {
	case ViewTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	}
	return m, cmd
}

// capturesKeys reports whether the focused panel takes raw text input.
func (m Model) capturesKeys() bool {
	switch m.overlay {
	case overlayForm, overlayComment:
		return true
	case overlayNone:
		return m.app.View() == ViewTasks && m.taskList.Searching()
	}
	return false
}

// afterForm is the panel to return to once the form or help closes.
func (m Model) afterForm() overlay {
	if _, ok := m.app.SelectedTask(); ok {
		return overlayDetail
	}
	return overlayNone
}

// refresh pushes the orchestrator state into every screen.
func (m *Model) refresh() tea.Cmd {
	now := m.now()
	tasks := m.app.Tasks()
	user, _ := m.app.session.User()

	m.dashboard.SetData(tasks, user, now)
	m.notifications.SetNotifications(m.app.Notifications(), now)
	if t, ok := m.app.SelectedTask(); ok {
		m.detail.SetTask(t)
	} else if m.overlay == overlayDetail {
		m.overlay = overlayNone
		m.detail.Clear()
	}
	return m.taskList.SetTasks(tasks)
}

func (m Model) load() tea.Cmd {
	o, ctx := m.app, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: o.Load(ctx)}
	}
}

func (m Model) findTask(id string) (model.Task, bool) {
	for _, t := range m.app.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.app.Session().Anonymous() {
		return m.auth.View()
	}

	title := "TaskFlow Pro"
	if n := m.app.UnreadCount(); n > 0 {
		title = fmt.Sprintf("TaskFlow Pro [%d new]", n)
	}
	right := ""
	if u, ok := m.app.session.User(); ok {
		right = fmt.Sprintf("%s (%s)", u.Name, u.Role)
	}

	header := m.layout.RenderHeader(title, right)
	tabBar := m.layout.RenderTabs(m.tabLabels(), m.activeTab())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.status)
	content := lipgloss.NewStyle().
		Height(m.layout.ContentHeight()).
		MaxHeight(m.layout.ContentHeight()).
		Render(m.renderContent())

	return m.layout.RenderWithFrame(header, tabBar, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.overlay {
	case overlayDetail:
		return m.detail.View()
	case overlayForm:
		return m.form.View()
	case overlayComment:
		return lipgloss.JoinVertical(lipgloss.Left, m.detail.View(), m.comment.View())
	case overlayHelp:
		return m.helpView.View()
	}

	if m.app.Loading() && m.app.View() != ViewNotifications {
		return theme.DimmedStyle.Render("Loading your workspace...")
	}

	switch v := m.app.View(); v {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewTasks:
		return m.taskList.View()
	case ViewNotifications:
		return m.notifications.View()
	default:
		return theme.DimmedStyle.Render(fmt.Sprintf("The %s screen is coming soon.", v))
	}
}

func (m Model) tabLabels() []string {
	labels := []string{
		"1 Dashboard", "2 Tasks", "3 Notifications",
		"4 Calendar", "5 Team", "6 Analytics", "7 Settings",
	}
	if n := m.app.UnreadCount(); n > 0 {
		labels[2] = fmt.Sprintf("3 Notifications (%d)", n)
	}
	return labels
}

func (m Model) activeTab() int {
	v := m.app.View()
	for i, t := range tabs {
		if t == v {
			return i
		}
	}
	return -1
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case overlayDetail:
		return "esc back | c comment | s advance | e edit | d delete | j/k scroll"
	case overlayForm:
		return "enter submit | esc cancel"
	case overlayComment:
		return "enter post | esc cancel"
	case overlayHelp:
		return "? close help | esc back"
	}

	switch m.app.View() {
	case ViewTasks:
		if f := m.taskList.FilterSummary(); f != "" {
			return f + " | 0 clear | enter open | n new | ? help"
		}
		return "/ search | f status | F priority | v board | enter open | n new | s advance | ? help"
	case ViewNotifications:
		return "j/k move | m read | M read all | ? help"
	default:
		return "1-7 screens | n new task | L sign out | ? help | q quit"
	}
}

func authError(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, session.ErrEmailAlreadyExists):
		return "An account with this email already exists"
	default:
		return err.Error()
	}
}
