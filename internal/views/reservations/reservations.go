// Package reservations provides the reservation screen: browse upcoming
// reservations, book a spot in advance and cancel pending bookings.
package reservations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// timeLayout is the local wall-clock format used by the booking form.
const timeLayout = "2006-01-02 15:04"

// LoadedMsg is returned after fetching reservations plus the pick lists
// for the booking form.
type LoadedMsg struct {
	Reservations []client.Reservation
	Cars         []client.Car
	Spots        []client.ParkingSpot
	Err          error
}

// BookedMsg is returned after a create-reservation call.
type BookedMsg struct {
	Reservation *client.Reservation
	Err         error
}

// CancelledMsg is returned after a cancel call.
type CancelledMsg struct {
	Err error
}

type step int

const (
	stepList step = iota
	stepPickCar
	stepPickSpot
	stepTimes
)

// KeyMap holds the reservation-screen key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	New     key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Select  key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the default reservation-screen key bindings.
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
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new reservation"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "cancel reservation"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// Model is the reservation-screen model.
type Model struct {
	http *client.Client
	keys KeyMap

	step         step
	reservations []client.Reservation
	cars         []client.Car
	spots        []client.ParkingSpot
	idx          int
	pick         int
	loading      bool
	busy         bool
	errMsg       string
	notice       string

	// booking form state
	carID  int
	spotID int
	start  textinput.Model
	end    textinput.Model
	onEnd  bool
}

// New creates a reservations model in the loading state.
func New(http *client.Client) Model {
	start := textinput.New()
	start.Placeholder = timeLayout
	start.CharLimit = len(timeLayout)

	end := textinput.New()
	end.Placeholder = timeLayout
	end.CharLimit = len(timeLayout)

	return Model{
		http:    http,
		keys:    DefaultKeyMap(),
		loading: true,
		start:   start,
		end:     end,
	}
}

// Init fetches reservations plus the booking pick lists.
func (m Model) Init() tea.Cmd {
	return load(m.http)
}

func load(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		res, err := c.MyReservations(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		cars, err := c.Cars(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		spots, err := c.AvailableSpots(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Reservations: res, Cars: cars, Spots: spots}
	}
}

// Editing reports whether a text field currently has focus.
func (m Model) Editing() bool {
	return m.step == stepTimes
}

// Update handles messages for the reservation screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.reservations = msg.Reservations
		m.cars = msg.Cars
		m.spots = msg.Spots
		if m.idx >= len(m.reservations) {
			m.idx = 0
		}
		return m, nil

	case BookedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.step = stepList
		m.notice = "reservation created"
		if msg.Reservation != nil {
			m.notice = fmt.Sprintf("reserved spot %s, fee %.2f",
				msg.Reservation.SpotNumber, msg.Reservation.TotalFee)
		}
		m.loading = true
		return m, load(m.http)

	case CancelledMsg:
		m.busy = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.notice = "reservation cancelled"
		m.loading = true
		return m, load(m.http)

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch m.step {
		case stepList:
			return m.updateList(msg)
		case stepPickCar, stepPickSpot:
			return m.updatePick(msg)
		case stepTimes:
			return m.updateTimes(msg)
		}
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
		if n := len(m.reservations); n > 0 {
			m.idx = (m.idx - 1 + n) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if n := len(m.reservations); n > 0 {
			m.idx = (m.idx + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		if len(m.cars) == 0 {
			m.errMsg = "register a car first"
			return m, nil
		}
		if len(m.spots) == 0 {
			m.errMsg = "no spots available"
			return m, nil
		}
		m.step = stepPickCar
		m.pick = 0
		m.errMsg = ""
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if len(m.reservations) == 0 {
			return m, nil
		}
		res := m.reservations[m.idx]
		if !strings.EqualFold(res.Status, "pending") && !strings.EqualFold(res.Status, "confirmed") {
			m.errMsg = fmt.Sprintf("cannot cancel a %s reservation", res.Status)
			return m, nil
		}
		m.busy = true
		http := m.http
		return m, func() tea.Msg {
			return CancelledMsg{Err: http.CancelReservation(context.Background(), res.ID)}
		}
	}
	return m, nil
}

func (m Model) updatePick(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := len(m.cars)
	if m.step == stepPickSpot {
		items = len(m.spots)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.step = stepList
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if items > 0 {
			m.pick = (m.pick - 1 + items) % items
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if items > 0 {
			m.pick = (m.pick + 1) % items
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.step == stepPickCar {
			m.carID = m.cars[m.pick].ID
			m.step = stepPickSpot
			m.pick = 0
			return m, nil
		}
		m.spotID = m.spots[m.pick].ID
		m.step = stepTimes
		m.onEnd = false
		now := time.Now().Add(time.Hour).Truncate(time.Hour)
		m.start.SetValue(now.Format(timeLayout))
		m.end.SetValue(now.Add(2 * time.Hour).Format(timeLayout))
		m.end.Blur()
		return m, m.start.Focus()
	}
	return m, nil
}

func (m Model) updateTimes(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.step = stepList
		m.start.Blur()
		m.end.Blur()
		return m, nil

	case msg.String() == "tab", msg.String() == "shift+tab":
		m.onEnd = !m.onEnd
		if m.onEnd {
			m.start.Blur()
			return m, m.end.Focus()
		}
		m.end.Blur()
		return m, m.start.Focus()

	case key.Matches(msg, m.keys.Select):
		if !m.onEnd {
			m.onEnd = true
			m.start.Blur()
			return m, m.end.Focus()
		}
		return m.submit()
	}

	var cmd tea.Cmd
	if m.onEnd {
		m.end, cmd = m.end.Update(msg)
	} else {
		m.start, cmd = m.start.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	start, err := time.ParseInLocation(timeLayout, strings.TrimSpace(m.start.Value()), time.Local)
	if err != nil {
		m.errMsg = "start time must look like " + timeLayout
		return m, nil
	}
	end, err := time.ParseInLocation(timeLayout, strings.TrimSpace(m.end.Value()), time.Local)
	if err != nil {
		m.errMsg = "end time must look like " + timeLayout
		return m, nil
	}
	if !end.After(start) {
		m.errMsg = "end time must be after start time"
		return m, nil
	}

	m.busy = true
	m.errMsg = ""
	http := m.http
	carID, spotID := m.carID, m.spotID
	return m, func() tea.Msg {
		res, err := http.CreateReservation(context.Background(), carID, spotID, start, end)
		return BookedMsg{Reservation: res, Err: err}
	}
}

// View renders the reservation screen.
func (m Model) View() string {
	switch m.step {
	case stepPickCar:
		return m.viewPickCar()
	case stepPickSpot:
		return m.viewPickSpot()
	case stepTimes:
		return m.viewTimes()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Reservations"))

	switch {
	case m.loading:
		lines = append(lines, theme.StyleDimmed.Render("  loading..."))
	case len(m.reservations) == 0:
		lines = append(lines, theme.StyleDimmed.Render("  no reservations"))
	default:
		for i, res := range m.reservations {
			prefix := "  "
			if i == m.idx {
				prefix = "> "
			}
			car := ""
			if res.Car != nil {
				car = "  " + res.Car.LicensePlate
			}
			lines = append(lines, fmt.Sprintf("%sspot %s/%s  %s → %s%s  %s", prefix,
				res.FloorNumber, res.SpotNumber, res.StartTime, res.EndTime, car,
				lipgloss.NewStyle().Foreground(theme.ReservationColor(res.Status)).Render(res.Status)))
		}
	}

	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	if m.notice != "" {
		lines = append(lines, theme.StyleSuccess.Render("  "+m.notice))
	}

	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  j/k:navigate  n:new  d:cancel  r:refresh"))
	return strings.Join(lines, "\n")
}

func (m Model) viewPickCar() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("New reservation: choose a car"))
	for i, car := range m.cars {
		prefix := "  "
		if i == m.pick {
			prefix = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s %s  %s", prefix, car.Brand, car.Model,
			theme.StyleSelected.Render(car.LicensePlate)))
	}
	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  j/k:navigate  enter:select  esc:back"))
	return strings.Join(lines, "\n")
}

func (m Model) viewPickSpot() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("New reservation: choose a spot"))
	for i, spot := range m.spots {
		prefix := "  "
		if i == m.pick {
			prefix = "> "
		}
		lines = append(lines, fmt.Sprintf("%sfloor %s spot %s", prefix, spot.FloorNumber, spot.SpotNumber))
	}
	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  j/k:navigate  enter:select  esc:back"))
	return strings.Join(lines, "\n")
}

func (m Model) viewTimes() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("New reservation: choose times"))
	lines = append(lines, "  start "+m.start.View())
	lines = append(lines, "  end   "+m.end.View())
	if m.busy {
		lines = append(lines, theme.StyleDimmed.Render("  booking..."))
	}
	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  tab:switch field  enter:book  esc:back"))
	return strings.Join(lines, "\n")
}
