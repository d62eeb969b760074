// Package cars provides the car-management screen: list the caller's cars,
// register new ones and remove old ones.
package cars

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// LoadedMsg is returned after fetching the car list.
type LoadedMsg struct {
	Cars []client.Car
	Err  error
}

// SavedMsg is returned after an add-car call.
type SavedMsg struct {
	Err error
}

// DeletedMsg is returned after a delete-car call.
type DeletedMsg struct {
	Car client.Car
	Err error
}

type step int

const (
	stepList step = iota
	stepForm
)

const numFields = 4

// KeyMap holds the cars-screen key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Submit  key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the default cars-screen key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add car"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete car"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// Model is the cars-screen model.
type Model struct {
	http *client.Client
	keys KeyMap

	step    step
	cars    []client.Car
	idx     int
	loading bool
	busy    bool
	errMsg  string
	notice  string

	// add-car form
	brand   textinput.Model
	model   textinput.Model
	year    textinput.Model
	plate   textinput.Model
	focused int
}

// New creates a cars model in the loading state.
func New(http *client.Client) Model {
	brand := textinput.New()
	brand.Placeholder = "brand"
	brand.CharLimit = 64

	model := textinput.New()
	model.Placeholder = "model"
	model.CharLimit = 64

	year := textinput.New()
	year.Placeholder = "year"
	year.CharLimit = 4

	plate := textinput.New()
	plate.Placeholder = "license plate"
	plate.CharLimit = 16

	return Model{
		http:    http,
		keys:    DefaultKeyMap(),
		loading: true,
		brand:   brand,
		model:   model,
		year:    year,
		plate:   plate,
	}
}

// Init fetches the car list.
func (m Model) Init() tea.Cmd {
	return load(m.http)
}

func load(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		cars, err := c.Cars(context.Background())
		return LoadedMsg{Cars: cars, Err: err}
	}
}

// Editing reports whether a text field currently has focus, so root-level
// single-key shortcuts stay out of the way.
func (m Model) Editing() bool {
	return m.step == stepForm
}

// Update handles messages for the cars screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.cars = msg.Cars
		if m.idx >= len(m.cars) {
			m.idx = 0
		}
		return m, nil

	case SavedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.step = stepList
		m.notice = "car added"
		m.loading = true
		return m, load(m.http)

	case DeletedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("%s removed", msg.Car.LicensePlate)
		m.loading = true
		return m, load(m.http)

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.step == stepForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.notice = ""
		return m, load(m.http)

	case key.Matches(msg, m.keys.Up):
		if n := len(m.cars); n > 0 {
			m.idx = (m.idx - 1 + n) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if n := len(m.cars); n > 0 {
			m.idx = (m.idx + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.step = stepForm
		m.errMsg = ""
		m.notice = ""
		m.focused = 0
		m.brand.Reset()
		m.model.Reset()
		m.year.Reset()
		m.plate.Reset()
		return m, m.brand.Focus()

	case key.Matches(msg, m.keys.Delete):
		if len(m.cars) == 0 {
			return m, nil
		}
		car := m.cars[m.idx]
		if car.IsParked {
			m.errMsg = "cannot delete a parked car"
			return m, nil
		}
		m.busy = true
		http := m.http
		return m, func() tea.Msg {
			return DeletedMsg{Car: car, Err: http.DeleteCar(context.Background(), car.ID)}
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.step = stepList
		m.errMsg = ""
		m.blurAll()
		return m, nil

	case msg.String() == "tab", msg.String() == "down":
		return m.focusField((m.focused + 1) % numFields)

	case msg.String() == "shift+tab", msg.String() == "up":
		return m.focusField((m.focused - 1 + numFields) % numFields)

	case key.Matches(msg, m.keys.Submit):
		if m.focused < numFields-1 {
			return m.focusField(m.focused + 1)
		}
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.focused {
	case 0:
		m.brand, cmd = m.brand.Update(msg)
	case 1:
		m.model, cmd = m.model.Update(msg)
	case 2:
		m.year, cmd = m.year.Update(msg)
	case 3:
		m.plate, cmd = m.plate.Update(msg)
	}
	return m, cmd
}

func (m Model) focusField(i int) (Model, tea.Cmd) {
	m.blurAll()
	m.focused = i
	switch i {
	case 0:
		return m, m.brand.Focus()
	case 1:
		return m, m.model.Focus()
	case 2:
		return m, m.year.Focus()
	default:
		return m, m.plate.Focus()
	}
}

func (m *Model) blurAll() {
	m.brand.Blur()
	m.model.Blur()
	m.year.Blur()
	m.plate.Blur()
}

func (m Model) submit() (Model, tea.Cmd) {
	brand := strings.TrimSpace(m.brand.Value())
	model := strings.TrimSpace(m.model.Value())
	plate := strings.TrimSpace(m.plate.Value())
	if brand == "" || model == "" || plate == "" {
		m.errMsg = "brand, model and license plate are required"
		return m, nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(m.year.Value()))
	if err != nil || year < 1900 {
		m.errMsg = "year must be a number like 2020"
		return m, nil
	}

	m.busy = true
	m.errMsg = ""
	http := m.http
	car := client.Car{Brand: brand, Model: model, Year: year, LicensePlate: plate}
	return m, func() tea.Msg {
		_, err := http.AddCar(context.Background(), car)
		return SavedMsg{Err: err}
	}
}

// View renders the cars screen.
func (m Model) View() string {
	if m.step == stepForm {
		return m.viewForm()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("My cars"))

	switch {
	case m.loading:
		lines = append(lines, theme.StyleDimmed.Render("  loading..."))
	case len(m.cars) == 0:
		lines = append(lines, theme.StyleDimmed.Render("  no cars registered"))
	default:
		for i, car := range m.cars {
			prefix := "  "
			if i == m.idx {
				prefix = "> "
			}
			state := ""
			if car.IsParked {
				state = theme.StyleSuccess.Render("  parked")
			}
			lines = append(lines, fmt.Sprintf("%s%s %s (%d)  %s%s", prefix, car.Brand, car.Model,
				car.Year, theme.StyleSelected.Render(car.LicensePlate), state))
		}
	}

	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	if m.notice != "" {
		lines = append(lines, theme.StyleSuccess.Render("  "+m.notice))
	}

	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  j/k:navigate  a:add  d:delete  r:refresh"))
	return strings.Join(lines, "\n")
}

func (m Model) viewForm() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Add car"))
	lines = append(lines, "  "+m.brand.View())
	lines = append(lines, "  "+m.model.View())
	lines = append(lines, "  "+m.year.View())
	lines = append(lines, "  "+m.plate.View())
	if m.busy {
		lines = append(lines, theme.StyleDimmed.Render("  saving..."))
	}
	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  tab:next field  enter:save  esc:back"))
	return strings.Join(lines, "\n")
}
