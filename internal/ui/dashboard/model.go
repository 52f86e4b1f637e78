package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/keys"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/theme"
)

// BellOpenedMsg is dispatched when the user opens the notification list.
// The receiver should mark the list as seen.
type BellOpenedMsg struct{}

// BalloonDismissedMsg is dispatched when the user dismisses the balloon
// toast. The receiver should mark the balloon notification as seen.
type BalloonDismissedMsg struct{}

// SensorRequestedMsg is dispatched when the user opens a sensor detail
// card.
type SensorRequestedMsg struct {
	Kind model.SensorKind
}

// plantArt is the character sprite per display level.
var plantArt = map[int]string{
	1: "  .  \n (o) \n  |  ",
	2: " \\|/ \n (o) \n  |  ",
	3: "\\\\|//\n (o) \n _|_ ",
}

// Model is the home dashboard view: the plant character, its vitals, and
// the notification surfaces.
type Model struct {
	keys *keys.KeyMap

	snapshot      *model.HomeSnapshot
	water         *model.SensorCard
	nutrient      *model.SensorCard
	unread        int
	balloon       *model.Notification
	notifications []model.Notification

	showList bool
	cursor   int
	errText  string

	width  int
	height int
}

// New creates a new dashboard model.
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

// SetSnapshot installs a fresh home snapshot.
func (m *Model) SetSnapshot(s *model.HomeSnapshot) {
	m.snapshot = s
	m.errText = ""
}

// SetError shows a transient error line on the dashboard.
func (m *Model) SetError(text string) {
	m.errText = text
}

// SetNotificationState installs the reconciled notification surfaces.
func (m *Model) SetNotificationState(unread int, balloon *model.Notification, list []model.Notification) {
	m.unread = unread
	m.balloon = balloon
	m.notifications = list
	if m.cursor >= len(list) {
		m.cursor = 0
	}
}

// SetSensorCard installs a fetched sensor detail card.
func (m *Model) SetSensorCard(card *model.SensorCard) {
	switch card.Kind {
	case model.SensorWater:
		m.water = card
	case model.SensorNutrient:
		m.nutrient = card
	}
}

// ListOpen reports whether the notification list modal is showing.
func (m Model) ListOpen() bool {
	return m.showList
}

// Update handles messages for the dashboard view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.showList {
		return m.handleListKeys(keyMsg)
	}

	switch keyMsg.String() {
	case "n":
		m.showList = true
		m.cursor = 0
		return m, func() tea.Msg { return BellOpenedMsg{} }
	case "b":
		if m.balloon != nil {
			return m, func() tea.Msg { return BalloonDismissedMsg{} }
		}
	case "w":
		return m, func() tea.Msg {
			return SensorRequestedMsg{Kind: model.SensorWater}
		}
	case "e":
		return m, func() tea.Msg {
			return SensorRequestedMsg{Kind: model.SensorNutrient}
		}
	}

	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "q":
		m.showList = false
	case "j", "down":
		if m.cursor < len(m.notifications)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.showList {
		return m.viewNotificationList()
	}

	if m.snapshot == nil {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(theme.HelpStyle.Render("Loading your planter..."))
	}

	left := m.viewCharacter()
	right := m.viewVitals()

	content := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	parts := []string{content}
	if m.errText != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// viewCharacter renders the plant sprite with its name, level, and any
// pending balloon toast.
func (m Model) viewCharacter() string {
	s := m.snapshot

	art, ok := plantArt[s.Level()]
	if !ok {
		art = plantArt[1]
	}

	nameLine := lipgloss.NewStyle().Bold(true).Render(s.PlantName) +
		theme.HelpStyle.Render(fmt.Sprintf("  Lv.%d", s.Level()))

	health := theme.HealthStyle(s.HealthScore).
		Render(fmt.Sprintf("health %s %d", healthBar(s.HealthScore), s.HealthScore))

	parts := []string{art, nameLine, health}

	if m.balloon != nil {
		parts = append([]string{
			theme.BalloonStyle.Render(m.balloon.Message),
			theme.HelpStyle.Render("b: dismiss"),
		}, parts...)
	}

	return theme.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

// viewVitals renders the sensor and climate cards.
func (m Model) viewVitals() string {
	s := m.snapshot

	water := m.vitalsLine("water", s.WaterLevelStatus, s.WaterNeedsCheck(), m.water, "w")
	nutrient := m.vitalsLine("nutrient", s.NutrientStatus, s.NutrientNeedsCheck(), m.nutrient, "e")

	climate := "climate  " + theme.HelpStyle.Render("no reading")
	if s.Temperature != nil && s.Humidity != nil {
		climate = fmt.Sprintf("climate  %.1f°C  %.0f%%", *s.Temperature, *s.Humidity)
	}

	asOf := theme.HelpStyle.Render("as of " + s.Header.AsOf.Format("15:04:05"))

	return theme.CardStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		water,
		nutrient,
		climate,
		asOf,
	))
}

func (m Model) vitalsLine(label, status string, needsCheck bool, card *model.SensorCard, hint string) string {
	line := fmt.Sprintf("%-9s", label)
	if needsCheck {
		line += theme.BadgeStyle.Render("check")
	} else {
		line += theme.LevelStyle("NORMAL").Render(status)
	}
	if card != nil {
		line += fmt.Sprintf("  %.1f (%.1f-%.1f) %s",
			card.Current, card.IdealMin, card.IdealMax,
			theme.LevelStyle(strings.ToUpper(card.Level())).Render(card.Level()))
	} else {
		line += theme.HelpStyle.Render("  " + hint + ": detail")
	}
	return line
}

// viewNotificationList renders the bell modal with today's notifications.
func (m Model) viewNotificationList() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Today's Notifications")}

	if len(m.notifications) == 0 {
		lines = append(lines, theme.HelpStyle.Render("Nothing yet today."))
	}
	for i, n := range m.notifications {
		line := fmt.Sprintf("%s  %s", n.CreatedAt.Format("15:04"), n.Message)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}

	lines = append(lines, "", theme.HelpStyle.Render("esc: close"))

	return theme.CardStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// BellIndicator renders the header bell with the unread count.
func (m Model) BellIndicator() string {
	if m.unread == 0 {
		return "bell"
	}
	return "bell " + theme.BadgeStyle.Render(fmt.Sprintf("%d", m.unread))
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// healthBar renders a ten-segment bar for a 0-100 score.
func healthBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := score / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
