package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/keys"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/theme"
)

// ModeToggledMsg is dispatched when the user flips the care mode.
type ModeToggledMsg struct {
	Mode string
}

// PushToggledMsg is dispatched when the user flips push delivery.
type PushToggledMsg struct {
	Enabled bool
}

// NicknameSubmittedMsg is dispatched when the user submits a new nickname.
type NicknameSubmittedMsg struct {
	Nickname string
}

// PasswordSubmittedMsg is dispatched when the user submits a password
// change.
type PasswordSubmittedMsg struct {
	Current string
	Next    string
}

// LogoutRequestedMsg is dispatched when the user chooses to sign out.
type LogoutRequestedMsg struct{}

// WithdrawRequestedMsg is dispatched when the user confirms account
// deletion.
type WithdrawRequestedMsg struct{}

// menu entry indices.
const (
	itemMode = iota
	itemPush
	itemNickname
	itemPassword
	itemLogout
	itemWithdraw
	itemCount
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	nickname string
	current  string
	next     string
	confirm  bool
}

// Model is the settings view: care mode, push delivery, profile, and
// account actions.
type Model struct {
	keys *keys.KeyMap

	user        *model.User
	mode        string
	pushEnabled bool

	cursor  int
	form    *huh.Form
	fb      *formBindings
	pending int
	errText string

	width  int
	height int
}

// New creates a new settings view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		fb:     &formBindings{},
		mode:   model.ModeAuto,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetUser installs the account profile.
func (m *Model) SetUser(u *model.User) {
	m.user = u
	if u != nil && u.Mode != "" {
		m.mode = u.Mode
	}
}

// SetMode installs the current care mode.
func (m *Model) SetMode(mode string) {
	m.mode = mode
}

// SetPushEnabled installs the current push delivery setting.
func (m *Model) SetPushEnabled(enabled bool) {
	m.pushEnabled = enabled
}

// SetError shows an error line under the menu.
func (m *Model) SetError(text string) {
	m.errText = text
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if m.cursor < itemCount-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		return m.activate()
	}

	return m, nil
}

func (m Model) activate() (Model, tea.Cmd) {
	m.errText = ""
	switch m.cursor {
	case itemMode:
		next := model.ModeManual
		if m.mode == model.ModeManual {
			next = model.ModeAuto
		}
		return m, func() tea.Msg { return ModeToggledMsg{Mode: next} }

	case itemPush:
		next := !m.pushEnabled
		return m, func() tea.Msg { return PushToggledMsg{Enabled: next} }

	case itemNickname:
		if m.user != nil {
			m.fb.nickname = m.user.Nickname
		}
		m.pending = itemNickname
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Nickname").
					Value(&m.fb.nickname).
					Validate(validateNickname),
			),
		).WithWidth(m.formWidth())
		return m, m.form.Init()

	case itemPassword:
		m.fb.current = ""
		m.fb.next = ""
		m.pending = itemPassword
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Current password").
					EchoMode(huh.EchoModePassword).
					Value(&m.fb.current),
				huh.NewInput().
					Title("New password").
					EchoMode(huh.EchoModePassword).
					Value(&m.fb.next).
					Validate(validatePassword),
			),
		).WithWidth(m.formWidth())
		return m, m.form.Init()

	case itemLogout:
		return m, func() tea.Msg { return LogoutRequestedMsg{} }

	case itemWithdraw:
		m.fb.confirm = false
		m.pending = itemWithdraw
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Delete this account?").
					Description("All plants and history will be removed.").
					Affirmative("Delete").
					Negative("Keep it").
					Value(&m.fb.confirm),
			),
		).WithWidth(m.formWidth())
		return m, m.form.Init()
	}

	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	pending := m.pending
	m.form = nil

	switch pending {
	case itemNickname:
		nickname := m.fb.nickname
		return m, func() tea.Msg { return NicknameSubmittedMsg{Nickname: nickname} }
	case itemPassword:
		current, next := m.fb.current, m.fb.next
		return m, func() tea.Msg { return PasswordSubmittedMsg{Current: current, Next: next} }
	case itemWithdraw:
		if m.fb.confirm {
			return m, func() tea.Msg { return WithdrawRequestedMsg{} }
		}
	}

	return m, nil
}

// View renders the settings menu.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Settings")}

	if m.form != nil {
		parts = append(parts, m.form.View())
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	}

	if m.user != nil {
		parts = append(parts, theme.HelpStyle.Render(
			fmt.Sprintf("%s (%s)", m.user.Nickname, m.user.Email)), "")
	}

	push := "off"
	if m.pushEnabled {
		push = "on"
	}
	labels := []string{
		"Care mode: " + theme.ModeStyle(m.mode).Render(m.mode),
		"Push alerts: " + push,
		"Change nickname",
		"Change password",
		"Sign out",
		"Delete account",
	}
	for i, label := range labels {
		if i == m.cursor {
			parts = append(parts, theme.SelectedItemStyle.Render(label))
		} else {
			parts = append(parts, theme.ListItemStyle.Render(label))
		}
	}

	if m.errText != "" {
		parts = append(parts, "", lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText))
	}
	parts = append(parts, "", theme.HelpStyle.Render("enter: select  esc: back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the settings view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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

func validateNickname(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("nickname is required")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
