package history

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/keys"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/theme"
)

// periods lists the selectable history windows in days, cycled by Tab.
var periods = []int{7, 30, 90}

// PeriodChangedMsg is dispatched when the user cycles the history window.
// The receiver should refetch history for the new period.
type PeriodChangedMsg struct {
	Days int
}

// Model is the growth history view: the measured-size chart and the
// daily sensor-alert counts.
type Model struct {
	keys        *keys.KeyMap
	history     *model.History
	periodIndex int
	errText     string
	width       int
	height      int
}

// New creates a new history view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Period returns the currently selected window in days.
func (m Model) Period() int {
	return periods[m.periodIndex]
}

// SetHistory installs a fetched history payload.
func (m *Model) SetHistory(h *model.History) {
	m.history = h
	m.errText = ""
}

// SetError shows an error line instead of the charts.
func (m *Model) SetError(text string) {
	m.errText = text
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if keyMsg.String() == "tab" {
		m.periodIndex = (m.periodIndex + 1) % len(periods)
		days := periods[m.periodIndex]
		return m, func() tea.Msg { return PeriodChangedMsg{Days: days} }
	}

	return m, nil
}

// View renders the history charts.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := fmt.Sprintf("Growth History (last %d days)", m.Period())
	parts := []string{titleStyle.Render(title)}

	switch {
	case m.errText != "":
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText))
	case m.history == nil:
		parts = append(parts, theme.HelpStyle.Render("Loading history..."))
	default:
		parts = append(parts,
			m.viewGrowth(),
			"",
			m.viewAlerts(),
		)
		if img := m.history.CurrentImage; img != nil {
			parts = append(parts, "", theme.HelpStyle.Render(
				"latest photo "+img.CapturedAt.Format("2006-01-02 15:04")))
		}
	}

	parts = append(parts, "", theme.HelpStyle.Render("tab: cycle period  esc: back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// viewGrowth renders the height series as a horizontal bar per day.
func (m Model) viewGrowth() string {
	g := m.history.GrowthGraph

	var max float64
	for _, p := range g.Data {
		if p.Height != nil && *p.Height > max {
			max = *p.Height
		}
	}

	lines := []string{lipgloss.NewStyle().Bold(true).Render("Size (" + g.Unit + ")")}
	if len(g.Data) == 0 {
		lines = append(lines, theme.HelpStyle.Render("No measurements in this period."))
	}
	for _, p := range g.Data {
		if p.Height == nil {
			lines = append(lines, fmt.Sprintf("%s  %s",
				p.Date, theme.HelpStyle.Render("no measurement")))
			continue
		}
		bar := scaledBar(*p.Height, max, 30)
		line := fmt.Sprintf("%s  %s %.1f", p.Date,
			lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(bar),
			*p.Height)
		if p.Width != nil {
			line += theme.HelpStyle.Render(fmt.Sprintf(" (w %.1f)", *p.Width))
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// viewAlerts renders daily sensor-alert counts.
func (m Model) viewAlerts() string {
	a := m.history.SensorAlertGraph

	lines := []string{lipgloss.NewStyle().Bold(true).Render("Sensor Alerts")}
	if len(a.Data) == 0 {
		lines = append(lines, theme.HelpStyle.Render("No alerts in this period."))
	}
	for _, p := range a.Data {
		marks := strings.Repeat("!", p.Total)
		line := fmt.Sprintf("%s  %s", p.Date,
			lipgloss.NewStyle().Foreground(theme.ColorRed).Render(marks))
		line += theme.HelpStyle.Render(
			fmt.Sprintf("  water %d, nutrient %d", p.Water, p.Nutrient))
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetSize updates the history view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// scaledBar renders value as a bar scaled against max, capped at width
// cells.
func scaledBar(value, max float64, width int) string {
	if max <= 0 {
		return ""
	}
	n := int(value / max * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("▇", n)
}
