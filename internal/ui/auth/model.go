package auth

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskflow/internal/theme"
)

// Form modes.
const (
	ModeLogin    = "login"
	ModeRegister = "register"
)

// LoginMsg is dispatched when the sign-in form is submitted.
type LoginMsg struct {
	Email    string
	Password string
}

// RegisterMsg is dispatched when the sign-up form is submitted.
type RegisterMsg struct {
	Name     string
	Email    string
	Password string
}

// QuitMsg is dispatched when the user aborts the form.
type QuitMsg struct{}

type formBindings struct {
	mode     string
	name     string
	email    string
	password string
}

// Model is the sign-in / sign-up screen shown while no user is signed in.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	err    string
	width  int
	height int
}

// New creates the auth form.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{mode: ModeLogin},
		width:  width,
		height: height,
	}
}

// Start resets the form. An email typed earlier is kept.
func (m *Model) Start() tea.Cmd {
	email := m.fb.email
	mode := m.fb.mode
	*m.fb = formBindings{mode: mode, email: email}
	m.form = m.build()
	return m.form.Init()
}

// SetError shows msg above the form, typically after a rejected submit.
func (m *Model) SetError(msg string) {
	m.err = msg
}

// Update handles messages for the auth form.
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
		m.err = ""
		fb := *m.fb
		if fb.mode == ModeRegister {
			return m, func() tea.Msg {
				return RegisterMsg{Name: fb.name, Email: fb.email, Password: fb.password}
			}
		}
		return m, func() tea.Msg {
			return LoginMsg{Email: fb.email, Password: fb.password}
		}
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return QuitMsg{} }
	}

	return m, cmd
}

// View renders the auth screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := theme.HeaderStyle.Render("TaskFlow Pro")
	subtitle := theme.HelpStyle.Render("Sign in to your workspace")
	parts := []string{title, subtitle, ""}
	if m.err != "" {
		parts = append(parts, theme.OverdueStyle.Render(m.err), "")
	}
	parts = append(parts, m.form.View())
	parts = append(parts, theme.HelpStyle.Render("Demo: john@taskflow.com / password"))

	panel := theme.DetailPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) build() *huh.Form {
	fb := m.fb
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account").
				Options(
					huh.NewOption("Sign in", ModeLogin),
					huh.NewOption("Create account", ModeRegister),
				).
				Value(&fb.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Full Name").
				Placeholder("Enter your full name").
				Value(&fb.name).
				Validate(validateRequired("Name")),
		).WithHideFunc(func() bool { return fb.mode != ModeRegister }),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("Enter your email").
				Value(&fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(min(max(m.width-8, 30), 60))
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	if !strings.Contains(s, "@") {
		return fmt.Errorf("enter a valid email")
	}
	return nil
}
