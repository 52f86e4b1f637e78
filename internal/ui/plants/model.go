package plants

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/keys"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/theme"
)

// AddRequestedMsg is dispatched when the user wants to register a plant.
type AddRequestedMsg struct{}

// RenameRequestedMsg is dispatched when the user wants to rename the
// selected plant.
type RenameRequestedMsg struct {
	Plant model.Plant
}

// Model is the plant roster view.
type Model struct {
	keys    *keys.KeyMap
	plants  []model.Plant
	devices []model.Device
	cursor  int
	width   int
	height  int
}

// New creates a new plant roster model.
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

// SetPlants installs the fetched roster.
func (m *Model) SetPlants(plants []model.Plant) {
	m.plants = plants
	if m.cursor >= len(plants) {
		m.cursor = 0
	}
}

// SetDevices installs the fetched paired devices.
func (m *Model) SetDevices(devices []model.Device) {
	m.devices = devices
}

// Update handles messages for the roster view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if m.cursor < len(m.plants)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		return m, func() tea.Msg { return AddRequestedMsg{} }
	case "enter":
		if m.cursor < len(m.plants) {
			plant := m.plants[m.cursor]
			return m, func() tea.Msg { return RenameRequestedMsg{Plant: plant} }
		}
	}

	return m, nil
}

// View renders the roster.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("My Plants")}

	if len(m.plants) == 0 {
		parts = append(parts, theme.HelpStyle.Render("No plants yet. Press 'a' to register one."))
	}
	for i, p := range m.plants {
		label := fmt.Sprintf("%s (%s)", p.Name, p.Species)
		if p.IsMain {
			label += " ★"
		}
		if i == m.cursor {
			parts = append(parts, theme.SelectedItemStyle.Render(label))
		} else {
			parts = append(parts, theme.ListItemStyle.Render(label))
		}
	}

	if len(m.devices) > 0 {
		parts = append(parts, "", lipgloss.NewStyle().Bold(true).Render("Paired Devices"))
		for _, d := range m.devices {
			status := "offline"
			if d.Paired {
				status = "paired"
			}
			parts = append(parts, theme.ListItemStyle.Render(
				fmt.Sprintf("%s  %s", d.Serial, theme.HelpStyle.Render(status))))
		}
	}

	parts = append(parts, "", theme.HelpStyle.Render("a: add  enter: rename  esc: back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the roster view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
