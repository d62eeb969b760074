// Package leave provides the end-parking screen: pick one of the caller's
// parked cars and take it off its spot.
package leave

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// LoadedMsg is returned after fetching the caller's parked cars.
type LoadedMsg struct {
	Cars []client.Car
	Err  error
}

// LeftMsg is returned after an end-parking call.
type LeftMsg struct {
	Car client.Car
	Err error
}

// KeyMap holds the leave-screen key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Leave   key.Binding
	Refresh key.Binding
}

// DefaultKeyMap returns the default leave-screen key bindings.
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
		Leave: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "leave spot"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the leave-screen model.
type Model struct {
	http *client.Client
	keys KeyMap

	cars    []client.Car
	idx     int
	loading bool
	leaving bool
	errMsg  string
	notice  string
}

// New creates a leave model in the loading state.
func New(http *client.Client) Model {
	return Model{http: http, keys: DefaultKeyMap(), loading: true}
}

// Init fetches the parked cars.
func (m Model) Init() tea.Cmd {
	return load(m.http)
}

func load(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		cars, err := c.ParkedCars(context.Background())
		return LoadedMsg{Cars: cars, Err: err}
	}
}

// Update handles messages for the leave screen.
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

	case LeftMsg:
		m.leaving = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("%s left the garage", msg.Car.LicensePlate)
		m.loading = true
		return m, load(m.http)

	case tea.KeyMsg:
		if m.leaving {
			return m, nil
		}
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

		case key.Matches(msg, m.keys.Leave):
			if len(m.cars) == 0 {
				return m, nil
			}
			car := m.cars[m.idx]
			m.leaving = true
			http := m.http
			return m, func() tea.Msg {
				return LeftMsg{Car: car, Err: http.EndParking(context.Background(), car.ID)}
			}
		}
	}
	return m, nil
}

// View renders the leave screen.
func (m Model) View() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Leave parking"))

	switch {
	case m.loading:
		lines = append(lines, theme.StyleDimmed.Render("  loading..."))
	case len(m.cars) == 0:
		lines = append(lines, theme.StyleDimmed.Render("  no cars parked"))
	default:
		for i, car := range m.cars {
			prefix := "  "
			if i == m.idx {
				prefix = "> "
			}
			lines = append(lines, fmt.Sprintf("%s%s %s  %s", prefix, car.Brand, car.Model,
				theme.StyleSelected.Render(car.LicensePlate)))
		}
	}

	if m.leaving {
		lines = append(lines, theme.StyleDimmed.Render("  leaving..."))
	}
	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	if m.notice != "" {
		lines = append(lines, theme.StyleSuccess.Render("  "+m.notice))
	}

	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  j/k:navigate  enter:leave spot  r:refresh"))
	return strings.Join(lines, "\n")
}
