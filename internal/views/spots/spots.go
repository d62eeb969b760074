// Package spots provides the parking-spot screen: browse available spots,
// pick one, pick a car, start parking.
package spots

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// LoadedMsg is returned after fetching spots and cars.
type LoadedMsg struct {
	Spots []client.ParkingSpot
	Cars  []client.Car
	Err   error
}

// StartResultMsg is returned after a start-parking call.
type StartResultMsg struct {
	Err error
}

// KeyMap holds the spot-screen key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Refresh key.Binding
	All     key.Binding
}

// DefaultKeyMap returns the default spot-screen key bindings.
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
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all/available"),
		),
	}
}

type step int

const (
	stepSpots step = iota // choosing a spot
	stepCars              // choosing which car to park
)

// Model is the spot-screen model.
type Model struct {
	http *client.Client
	keys KeyMap

	spots   []client.ParkingSpot
	cars    []client.Car
	showAll bool

	step       step
	spotIdx    int
	carIdx     int
	chosenSpot client.ParkingSpot

	loading  bool
	starting bool
	errMsg   string
	notice   string
}

// New creates a spot model in the loading state.
func New(http *client.Client) Model {
	return Model{http: http, keys: DefaultKeyMap(), loading: true}
}

// Init fetches spots and cars.
func (m Model) Init() tea.Cmd {
	return load(m.http, m.showAll)
}

func load(c *client.Client, all bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			spots []client.ParkingSpot
			err   error
		)
		if all {
			spots, err = c.Spots(ctx)
		} else {
			spots, err = c.AvailableSpots(ctx)
		}
		if err != nil {
			return LoadedMsg{Err: err}
		}
		cars, err := c.Cars(ctx)
		if err != nil {
			return LoadedMsg{Spots: spots, Err: err}
		}
		return LoadedMsg{Spots: spots, Cars: cars}
	}
}

// Update handles messages for the spot screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.spots = msg.Spots
		m.cars = msg.Cars
		m.clampSelection()
		return m, nil

	case StartResultMsg:
		m.starting = false
		m.step = stepSpots
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("parked on spot %s/%s", m.chosenSpot.FloorNumber, m.chosenSpot.SpotNumber)
		m.loading = true
		return m, load(m.http, m.showAll)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.starting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.notice = ""
		return m, load(m.http, m.showAll)

	case key.Matches(msg, m.keys.All):
		m.showAll = !m.showAll
		m.loading = true
		return m, load(m.http, m.showAll)

	case key.Matches(msg, m.keys.Back):
		if m.step == stepCars {
			m.step = stepSpots
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.choose()
	}
	return m, nil
}

func (m *Model) move(delta int) {
	switch m.step {
	case stepSpots:
		if n := len(m.spots); n > 0 {
			m.spotIdx = (m.spotIdx + delta + n) % n
		}
	case stepCars:
		if n := len(m.cars); n > 0 {
			m.carIdx = (m.carIdx + delta + n) % n
		}
	}
}

func (m Model) choose() (Model, tea.Cmd) {
	switch m.step {
	case stepSpots:
		if len(m.spots) == 0 {
			return m, nil
		}
		spot := m.spots[m.spotIdx]
		if spot.IsOccupied {
			m.errMsg = "that spot is occupied"
			return m, nil
		}
		if len(m.cars) == 0 {
			m.errMsg = "no cars registered, add one first (4)"
			return m, nil
		}
		m.chosenSpot = spot
		m.step = stepCars
		m.carIdx = 0
		m.errMsg = ""
		return m, nil

	case stepCars:
		car := m.cars[m.carIdx]
		m.starting = true
		http := m.http
		spotID := m.chosenSpot.ID
		return m, func() tea.Msg {
			return StartResultMsg{Err: http.StartParking(context.Background(), car.ID, spotID)}
		}
	}
	return m, nil
}

func (m *Model) clampSelection() {
	if m.spotIdx >= len(m.spots) {
		m.spotIdx = 0
	}
	if m.carIdx >= len(m.cars) {
		m.carIdx = 0
	}
}

// View renders the spot screen.
func (m Model) View() string {
	var lines []string

	title := "Available spots"
	if m.showAll {
		title = "All spots"
	}
	lines = append(lines, theme.StyleHeader.Render(title))

	switch {
	case m.loading:
		lines = append(lines, theme.StyleDimmed.Render("  loading..."))
	case len(m.spots) == 0:
		lines = append(lines, theme.StyleDimmed.Render("  no spots to show"))
	default:
		for i, spot := range m.spots {
			prefix := "  "
			if m.step == stepSpots && i == m.spotIdx {
				prefix = "> "
			}
			glyph := lipgloss.NewStyle().
				Foreground(theme.SpotColor(spot.IsOccupied)).
				Render(theme.SpotGlyph(spot.IsOccupied))
			lines = append(lines, fmt.Sprintf("%s%s floor %s spot %s", prefix, glyph, spot.FloorNumber, spot.SpotNumber))
		}
	}

	if m.step == stepCars {
		lines = append(lines, "")
		lines = append(lines, theme.StyleHeader.Render(
			fmt.Sprintf("Park which car on %s/%s?", m.chosenSpot.FloorNumber, m.chosenSpot.SpotNumber)))
		for i, car := range m.cars {
			prefix := "  "
			if i == m.carIdx {
				prefix = "> "
			}
			lines = append(lines, fmt.Sprintf("%s%s %s  %s", prefix, car.Brand, car.Model,
				theme.StyleSelected.Render(car.LicensePlate)))
		}
	}

	if m.starting {
		lines = append(lines, theme.StyleDimmed.Render("  starting..."))
	}
	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	if m.notice != "" {
		lines = append(lines, theme.StyleSuccess.Render("  "+m.notice))
	}

	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  j/k:navigate  enter:select  a:all/available  r:refresh  esc:back"))
	return strings.Join(lines, "\n")
}
