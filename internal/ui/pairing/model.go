package pairing

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/theme"
)

// SerialSubmittedMsg is dispatched when the user submits a device serial.
type SerialSubmittedMsg struct {
	Serial string
}

// CancelMsg is dispatched when the user backs out of pairing.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	serial string
}

// Model is the Bubble Tea model for the device pairing form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errText string
	width   int
	height  int
}

// New creates a new pairing form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the pairing form.
func (m *Model) Start() tea.Cmd {
	m.fb.serial = ""
	m.errText = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Device Serial").
				Description("Printed on the base of the planter.").
				Placeholder("SSK-XXXXXXXX").
				Value(&m.fb.serial).
				Validate(validateSerial),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// SetError shows an error line under the form, after a rejected serial
// for example.
func (m *Model) SetError(text string) {
	m.errText = text
}

// Update handles messages for the pairing view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		serial := m.fb.serial
		return m, func() tea.Msg { return SerialSubmittedMsg{Serial: serial} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the pairing form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{
		titleStyle.Render("Pair Your Planter"),
		m.form.View(),
	}
	if m.errText != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
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

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	return h
}

func validateSerial(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("serial is required")
	}
	if len(s) < 6 {
		return fmt.Errorf("serial looks too short")
	}
	return nil
}
