package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/theme"
)

// dateLayout is the due date format accepted by the form.
const dateLayout = "2006-01-02"

// CreatedMsg is dispatched when the create form is submitted.
type CreatedMsg struct {
	Draft model.TaskDraft
}

// UpdatedMsg is dispatched when the edit form is submitted. The patch
// carries every field the form shows.
type UpdatedMsg struct {
	TaskID string
	Patch  model.TaskPatch
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      model.TaskStatus
	priority    model.Priority
	assigneeID  string
	dueDate     string
	tags        string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	users    []model.User
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{status: model.StatusTodo, priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetUsers sets the assignee choices.
func (m *Model) SetUsers(users []model.User) {
	m.users = users
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{status: model.StatusTodo, priority: model.PriorityMedium}
	m.form = m.build()
	return m.form.Init()
}

// StartEdit initializes the form with t's current values.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	*m.fb = formBindings{
		title:       t.Title,
		description: t.Description,
		status:      t.Status,
		priority:    t.Priority,
		assigneeID:  t.AssigneeID,
		tags:        strings.Join(t.Tags, ", "),
	}
	if t.DueDate != nil {
		m.fb.dueDate = t.DueDate.Format(dateLayout)
	}
	m.form = m.build()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.submit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Create New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	content := theme.TitleStyle.MarginBottom(1).Render(titleText) + "\n" + m.form.View()
	return theme.DetailPanelStyle.Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) build() *huh.Form {
	statusOpts := make([]huh.Option[model.TaskStatus], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOpts[i] = huh.NewOption(s.Label(), s)
	}
	priorityOpts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		priorityOpts[i] = huh.NewOption(p.Label(), p)
	}
	assigneeOpts := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	for _, u := range m.users {
		assigneeOpts = append(assigneeOpts, huh.NewOption(u.Name, u.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Enter task title...").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Describe the task...").
				Value(&m.fb.description),
			huh.NewSelect[model.TaskStatus]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.status),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorityOpts...).
				Value(&m.fb.priority),
			huh.NewSelect[string]().
				Title("Assignee").
				Options(assigneeOpts...).
				Value(&m.fb.assigneeID),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Tags").
				Placeholder("design, frontend, urgent").
				Value(&m.fb.tags),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) submit() tea.Cmd {
	due := parseDate(m.fb.dueDate)
	tags := ParseTags(m.fb.tags)

	if m.editMode {
		patch := model.TaskPatch{
			Title:       model.Ptr(m.fb.title),
			Description: model.Ptr(m.fb.description),
			Status:      model.Ptr(m.fb.status),
			Priority:    model.Ptr(m.fb.priority),
			AssigneeID:  model.Ptr(m.fb.assigneeID),
			DueDate:     model.Ptr(due),
			Tags:        tags,
		}
		id := m.editID
		return func() tea.Msg { return UpdatedMsg{TaskID: id, Patch: patch} }
	}

	draft := model.TaskDraft{
		Title:       m.fb.title,
		Description: m.fb.description,
		Status:      m.fb.status,
		Priority:    m.fb.priority,
		AssigneeID:  m.fb.assigneeID,
		Tags:        tags,
	}
	if !due.IsZero() {
		draft.DueDate = &due
	}
	return func() tea.Msg { return CreatedMsg{Draft: draft} }
}

// ParseTags splits a comma-separated tag field, trimming blanks and
// dropping empty entries.
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseDate returns the zero time for an empty or invalid field.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
