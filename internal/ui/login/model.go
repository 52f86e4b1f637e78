package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/theme"
)

// SubmittedMsg is dispatched when the user submits the login form.
type SubmittedMsg struct {
	Email    string
	Password string
	Remember bool
}

// SignupSubmittedMsg is dispatched when the user submits the signup form.
type SignupSubmittedMsg struct {
	Email    string
	Password string
	Nickname string
}

// SwitchToSignupMsg is dispatched when the user asks for the signup form.
type SwitchToSignupMsg struct{}

// SwitchToLoginMsg is dispatched when the user returns to the login form.
type SwitchToLoginMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	nickname string
	remember bool
	signup   bool
}

// Model is the Bubble Tea model for the login and signup forms.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errText string
	width   int
	height  int
}

// New creates a new login form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{remember: true},
		width:  width,
		height: height,
	}
}

// StartLogin initializes the login form. savedEmail, when non-empty,
// prefills the email field.
func (m *Model) StartLogin(savedEmail string) tea.Cmd {
	m.fb.signup = false
	m.fb.email = savedEmail
	m.fb.password = ""
	m.fb.remember = savedEmail != ""
	m.errText = ""
	m.form = m.buildLoginForm()
	return m.form.Init()
}

// StartSignup initializes the signup form.
func (m *Model) StartSignup() tea.Cmd {
	m.fb.signup = true
	m.fb.email = ""
	m.fb.password = ""
	m.fb.nickname = ""
	m.errText = ""
	m.form = m.buildSignupForm()
	return m.form.Init()
}

// SetError shows an error line under the form, after a rejected login
// for example.
func (m *Model) SetError(text string) {
	m.errText = text
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+s" {
		if m.fb.signup {
			return m, func() tea.Msg { return SwitchToLoginMsg{} }
		}
		return m, func() tea.Msg { return SwitchToSignupMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		// Re-arm the form; there is no screen to go back to from here.
		if m.fb.signup {
			return m, m.StartSignup()
		}
		return m, m.StartLogin(m.fb.email)
	}

	return m, cmd
}

// View renders the login or signup form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Sign In"
	hint := "ctrl+s: create an account"
	if m.fb.signup {
		titleText = "Create Account"
		hint = "ctrl+s: back to sign in"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{
		titleStyle.Render(titleText),
		m.form.View(),
	}
	if m.errText != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText))
	}
	parts = append(parts, theme.HelpStyle.Render(hint))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("Remember email").
				Value(&m.fb.remember),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildSignupForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Nickname").
				Value(&m.fb.nickname).
				Validate(validateRequired("Nickname")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	if fb.signup {
		return func() tea.Msg {
			return SignupSubmittedMsg{
				Email:    fb.email,
				Password: fb.password,
				Nickname: fb.nickname,
			}
		}
	}
	return func() tea.Msg {
		return SubmittedMsg{
			Email:    fb.email,
			Password: fb.password,
			Remember: fb.remember,
		}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
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
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	at := strings.Index(s, "@")
	if at <= 0 || !strings.Contains(s[at:], ".") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
