// Package dashboard provides the landing screen: a quick overview of the
// caller's parked cars and the garage's free capacity.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// LoadedMsg is returned after the overview fetch.
type LoadedMsg struct {
	Parked    []client.Car
	Available int
	Err       error
}

// Model holds the dashboard state.
type Model struct {
	http *client.Client
	spin spinner.Model

	parked    []client.Car
	available int
	loading   bool
	errMsg    string

	Width int
}

// New creates a dashboard model in the loading state.
func New(http *client.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.StyleDimmed
	return Model{http: http, spin: sp, loading: true}
}

// Init fetches the overview.
func (m Model) Init() tea.Cmd {
	return tea.Batch(load(m.http), m.spin.Tick)
}

func load(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		parked, err := c.ParkedCars(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		spots, err := c.AvailableSpots(ctx)
		if err != nil {
			return LoadedMsg{Parked: parked, Err: err}
		}
		return LoadedMsg{Parked: parked, Available: len(spots)}
	}
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		m.parked = msg.Parked
		m.available = msg.Available
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.errMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, tea.Batch(load(m.http), m.spin.Tick)
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Overview"))

	switch {
	case m.loading:
		lines = append(lines, "  "+m.spin.View()+theme.StyleDimmed.Render("loading..."))
	case m.errMsg != "":
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	default:
		free := lipgloss.NewStyle().Foreground(theme.ColorSpotFree).Render(fmt.Sprintf("%d", m.available))
		lines = append(lines, fmt.Sprintf("  Free spots: %s", free))
		lines = append(lines, "")
		if len(m.parked) == 0 {
			lines = append(lines, theme.StyleDimmed.Render("  No cars parked right now"))
		} else {
			lines = append(lines, theme.StyleHeader.Render("Currently parked"))
			for _, car := range m.parked {
				lines = append(lines, fmt.Sprintf("  %s %s  %s",
					car.Brand, car.Model,
					theme.StyleSelected.Render(car.LicensePlate)))
			}
		}
	}

	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  r:refresh  2:spots  3:leave  4:cars  5:reservations  6:stats  7:profile"))
	return strings.Join(lines, "\n")
}
