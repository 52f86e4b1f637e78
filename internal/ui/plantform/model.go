package plantform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/theme"
)

// PlantCreatedMsg is dispatched when the user submits a new plant profile.
type PlantCreatedMsg struct {
	Name      string
	SpeciesID int
}

// PlantRenamedMsg is dispatched when the user renames an existing plant.
type PlantRenamedMsg struct {
	PlantID int
	Name    string
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name      string
	speciesID int
}

// Model is the Bubble Tea model for the plant create/rename form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   int
	species  []model.Species
	width    int
	height   int
}

// New creates a new plant form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetSpecies sets the selectable species for the create form.
func (m *Model) SetSpecies(species []model.Species) {
	m.species = species
}

// StartCreate initializes the form for registering a new plant.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.fb.name = ""
	m.fb.speciesID = 0
	if len(m.species) > 0 {
		m.fb.speciesID = m.species[0].SpeciesID
	}
	m.form = m.buildCreateForm()
	return m.form.Init()
}

// StartRename initializes the form for renaming an existing plant.
func (m *Model) StartRename(plant model.Plant) tea.Cmd {
	m.editMode = true
	m.editID = plant.PlantID
	m.fb.name = plant.Name
	m.form = m.buildRenameForm()
	return m.form.Init()
}

// Update handles messages for the plant form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the plant form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Register Plant"
	if m.editMode {
		titleText = "Rename Plant"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildCreateForm() *huh.Form {
	opts := make([]huh.Option[int], len(m.species))
	for i, s := range m.species {
		opts[i] = huh.NewOption(s.Name, s.SpeciesID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("What will you call it?").
				Value(&m.fb.name).
				Validate(validateName),
			huh.NewSelect[int]().
				Title("Species").
				Options(opts...).
				Value(&m.fb.speciesID),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildRenameForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateName),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	if m.editMode {
		id := m.editID
		return func() tea.Msg { return PlantRenamedMsg{PlantID: id, Name: fb.name} }
	}
	return func() tea.Msg { return PlantCreatedMsg{Name: fb.name, SpeciesID: fb.speciesID} }
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
	h := m.height - 4
	if h < 8 {
		h = 8
	}
	return h
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	if len([]rune(s)) > 20 {
		return fmt.Errorf("name must be 20 characters or fewer")
	}
	return nil
}
