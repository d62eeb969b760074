// Package app holds the root Bubble Tea model. It owns navigation between
// the signed-out screens (login, register) and the signed-in screens, and
// follows the session reconciler: whichever screen is on display, a session
// appearing or disappearing moves the UI to the matching screen set.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/session"
	"github.com/parking-garage/tui/internal/theme"
	"github.com/parking-garage/tui/internal/views/cars"
	"github.com/parking-garage/tui/internal/views/dashboard"
	"github.com/parking-garage/tui/internal/views/leave"
	"github.com/parking-garage/tui/internal/views/login"
	"github.com/parking-garage/tui/internal/views/profile"
	"github.com/parking-garage/tui/internal/views/register"
	"github.com/parking-garage/tui/internal/views/reservations"
	"github.com/parking-garage/tui/internal/views/spots"
	"github.com/parking-garage/tui/internal/views/stats"
	"github.com/parking-garage/tui/internal/views/status"
)

// Screen identifies which screen is on display.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenDashboard
	ScreenSpots
	ScreenLeave
	ScreenCars
	ScreenReservations
	ScreenStats
	ScreenProfile
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "sign in"
	case ScreenRegister:
		return "register"
	case ScreenDashboard:
		return "dashboard"
	case ScreenSpots:
		return "spots"
	case ScreenLeave:
		return "leave"
	case ScreenCars:
		return "cars"
	case ScreenReservations:
		return "reservations"
	case ScreenStats:
		return "statistics"
	case ScreenProfile:
		return "profile"
	default:
		return "?"
	}
}

// authScreens is the tab cycle order while signed in.
var authScreens = []Screen{
	ScreenDashboard, ScreenSpots, ScreenLeave, ScreenCars,
	ScreenReservations, ScreenStats, ScreenProfile,
}

// AuthChangedMsg is delivered whenever the reconciler observes a session
// state transition.
type AuthChangedMsg struct {
	State session.State
}

// Model is the root Bubble Tea model.
type Model struct {
	http  *client.Client
	store *session.Store
	bus   *session.Bus
	rec   *session.Reconciler

	keys   KeyMap
	width  int
	height int

	state  session.State
	screen Screen

	statusBar status.Model

	// Sub-views.
	login        login.Model
	register     register.Model
	dashboard    dashboard.Model
	spots        spots.Model
	leave        leave.Model
	cars         cars.Model
	reservations reservations.Model
	stats        stats.Model
	profile      profile.Model
}

// New creates the root model. The reconciler must already be started so its
// state reflects the persisted session.
func New(http *client.Client, store *session.Store, bus *session.Bus, rec *session.Reconciler) Model {
	m := Model{
		http:      http,
		store:     store,
		bus:       bus,
		rec:       rec,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		login:     login.New(http, store, bus),
		register:  register.New(http),
	}
	m.rebuildAuthViews()
	m.applyState(rec.State())
	return m
}

// Init arms the auth watcher and loads the first screen set.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForAuth()}
	if m.state.Kind == session.StateAuthenticated {
		cmds = append(cmds, m.authInitCmds())
	}
	return tea.Batch(cmds...)
}

// waitForAuth blocks on the reconciler's change channel and turns each
// wakeup into a message. It is re-armed after every delivery, the same way
// a read loop re-arms itself.
func (m Model) waitForAuth() tea.Cmd {
	ch := m.rec.Changes()
	rec := m.rec
	return func() tea.Msg {
		<-ch
		return AuthChangedMsg{State: rec.State()}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.dashboard.Width = msg.Width
		m.login.SetSize(msg.Width, msg.Height)
		m.register.SetSize(msg.Width, msg.Height)
		return m, nil

	case AuthChangedMsg:
		return m.handleAuthChange(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case login.RegisterRequestedMsg:
		m.screen = ScreenRegister
		m.register = register.New(m.http)
		return m, nil

	case register.BackMsg:
		m.screen = ScreenLogin
		m.login = login.New(m.http, m.store, m.bus)
		return m, nil

	case profile.LoggedOutMsg:
		if msg.ServerErr != nil {
			m.statusBar.Notice = "signed out locally; server logout failed"
		}
		// The logout event reaches the reconciler through the bus; the
		// screen switch arrives as an AuthChangedMsg.
		return m, nil
	}

	return m.routeToViews(msg)
}

// routeToViews dispatches view-owned messages to the screen models that
// produced them. Messages are typed per view package, so each one has
// exactly one destination.
func (m Model) routeToViews(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case login.ResultMsg:
		m.login, cmd = m.login.Update(msg)
	case register.ResultMsg:
		m.register, cmd = m.register.Update(msg)
	case dashboard.LoadedMsg, spinner.TickMsg:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case spots.LoadedMsg, spots.StartResultMsg:
		m.spots, cmd = m.spots.Update(msg)
	case leave.LoadedMsg, leave.LeftMsg:
		m.leave, cmd = m.leave.Update(msg)
	case cars.LoadedMsg, cars.SavedMsg, cars.DeletedMsg:
		m.cars, cmd = m.cars.Update(msg)
	case reservations.LoadedMsg, reservations.BookedMsg, reservations.CancelledMsg:
		m.reservations, cmd = m.reservations.Update(msg)
	case stats.LoadedMsg:
		m.stats, cmd = m.stats.Update(msg)
	case profile.LoadedMsg, profile.SavedMsg:
		m.profile, cmd = m.profile.Update(msg)
	}
	return m, cmd
}

func (m Model) handleAuthChange(msg AuthChangedMsg) (tea.Model, tea.Cmd) {
	prev := m.state.Kind
	m.applyState(msg.State)

	cmds := []tea.Cmd{m.waitForAuth()}
	if msg.State.Kind == session.StateAuthenticated && prev != session.StateAuthenticated {
		m.rebuildAuthViews()
		cmds = append(cmds, m.authInitCmds())
	}
	if msg.State.Kind == session.StateUnauthenticated && prev != session.StateUnauthenticated {
		m.login = login.New(m.http, m.store, m.bus)
		m.register = register.New(m.http)
	}
	return m, tea.Batch(cmds...)
}

// applyState records the session state and moves to the matching screen set
// when the current screen belongs to the other one.
func (m *Model) applyState(st session.State) {
	m.state = st
	switch st.Kind {
	case session.StateAuthenticated:
		m.statusBar.UserEmail = st.Profile.Email
		if m.screen == ScreenLogin || m.screen == ScreenRegister {
			m.screen = ScreenDashboard
			m.statusBar.Notice = ""
		}
	case session.StateUnauthenticated:
		m.statusBar.UserEmail = ""
		if m.screen != ScreenRegister {
			m.screen = ScreenLogin
		}
	}
	m.statusBar.Screen = m.screen.String()
}

// rebuildAuthViews resets the signed-in screens so each one fetches fresh
// data for the new session.
func (m *Model) rebuildAuthViews() {
	m.dashboard = dashboard.New(m.http)
	m.spots = spots.New(m.http)
	m.leave = leave.New(m.http)
	m.cars = cars.New(m.http)
	m.reservations = reservations.New(m.http)
	m.stats = stats.New(m.http)
	m.profile = profile.New(m.http, m.store, m.bus)
}

func (m Model) authInitCmds() tea.Cmd {
	return tea.Batch(
		m.dashboard.Init(),
		m.spots.Init(),
		m.leave.Init(),
		m.cars.Init(),
		m.reservations.Init(),
		m.stats.Init(),
		m.profile.Init(),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// While a text field has focus, every other key belongs to the view.
	if m.activeEditing() {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case m.state.Kind != session.StateAuthenticated:
		return m.updateActive(msg)

	case key.Matches(msg, m.keys.Tab):
		return m.switchScreen(m.nextScreen()), nil

	case key.Matches(msg, m.keys.Dashboard):
		return m.switchScreen(ScreenDashboard), nil
	case key.Matches(msg, m.keys.Spots):
		return m.switchScreen(ScreenSpots), nil
	case key.Matches(msg, m.keys.Leave):
		return m.switchScreen(ScreenLeave), nil
	case key.Matches(msg, m.keys.Cars):
		return m.switchScreen(ScreenCars), nil
	case key.Matches(msg, m.keys.Reservations):
		return m.switchScreen(ScreenReservations), nil
	case key.Matches(msg, m.keys.Stats):
		return m.switchScreen(ScreenStats), nil
	case key.Matches(msg, m.keys.Profile):
		return m.switchScreen(ScreenProfile), nil
	}

	return m.updateActive(msg)
}

func (m Model) switchScreen(s Screen) Model {
	m.screen = s
	m.statusBar.Screen = s.String()
	m.statusBar.Notice = ""
	return m
}

func (m Model) nextScreen() Screen {
	for i, s := range authScreens {
		if s == m.screen {
			return authScreens[(i+1)%len(authScreens)]
		}
	}
	return ScreenDashboard
}

func (m Model) activeEditing() bool {
	switch m.screen {
	case ScreenLogin, ScreenRegister:
		return true
	case ScreenCars:
		return m.cars.Editing()
	case ScreenReservations:
		return m.reservations.Editing()
	case ScreenProfile:
		return m.profile.Editing()
	default:
		return false
	}
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenLogin:
		m.login, cmd = m.login.Update(msg)
	case ScreenRegister:
		m.register, cmd = m.register.Update(msg)
	case ScreenDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ScreenSpots:
		m.spots, cmd = m.spots.Update(msg)
	case ScreenLeave:
		m.leave, cmd = m.leave.Update(msg)
	case ScreenCars:
		m.cars, cmd = m.cars.Update(msg)
	case ScreenReservations:
		m.reservations, cmd = m.reservations.Update(msg)
	case ScreenStats:
		m.stats, cmd = m.stats.Update(msg)
	case ScreenProfile:
		m.profile, cmd = m.profile.Update(msg)
	}
	return m, cmd
}

// View renders the full TUI. Before the first recheck settles nothing is
// drawn, so the user never sees a screen for a session state that has not
// been established yet.
func (m Model) View() string {
	if m.state.Kind == session.StateUnknown {
		return ""
	}

	sections := []string{
		m.statusBar.View(),
		m.activeView(),
	}
	if m.state.Kind == session.StateAuthenticated {
		sections = append(sections,
			theme.StyleDimmed.Render("  1-7:screens  tab:next  q:quit"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) activeView() string {
	switch m.screen {
	case ScreenLogin:
		return m.login.View()
	case ScreenRegister:
		return m.register.View()
	case ScreenDashboard:
		return m.dashboard.View()
	case ScreenSpots:
		return m.spots.View()
	case ScreenLeave:
		return m.leave.View()
	case ScreenCars:
		return m.cars.View()
	case ScreenReservations:
		return m.reservations.View()
	case ScreenStats:
		return m.stats.View()
	case ScreenProfile:
		return m.profile.View()
	default:
		return ""
	}
}
