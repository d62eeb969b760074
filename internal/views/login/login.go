// Package login provides the sign-in screen: an email/password form that
// authenticates against the backend, persists the session, and announces
// the login on the event bus.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/session"
	"github.com/parking-garage/tui/internal/theme"
)

// ResultMsg is returned after a login attempt. On success the session is
// already persisted and the login event already published.
type ResultMsg struct {
	Profile session.Profile
	Err     error
}

// RegisterRequestedMsg asks the app to show the registration screen.
type RegisterRequestedMsg struct{}

// KeyMap holds the login-specific key bindings.
type KeyMap struct {
	Next     key.Binding
	Submit   key.Binding
	Register key.Binding
}

// DefaultKeyMap returns the default login key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "register"),
		),
	}
}

// Model is the login screen model.
type Model struct {
	http  *client.Client
	store *session.Store
	bus   *session.Bus
	keys  KeyMap

	email    textinput.Model
	password textinput.Model
	focused  int

	submitting bool
	errMsg     string

	width  int
	height int
}

// New creates a login model with the email field focused.
func New(http *client.Client, store *session.Store, bus *session.Bus) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return Model{
		http:     http,
		store:    store,
		bus:      bus,
		keys:     DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

// Init is a no-op; the form waits for input.
func (m Model) Init() tea.Cmd { return nil }

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = friendlyError(msg.Err)
		}
		// On success the reconciler flips the app to the authenticated
		// screen set; nothing to do here.
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Register):
			return m, func() tea.Msg { return RegisterRequestedMsg{} }

		case key.Matches(msg, m.keys.Next):
			m.focusField((m.focused + 1) % 2)
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			if m.focused == 0 {
				m.focusField(1)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField(i int) {
	m.focused = i
	if i == 0 {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.email.Blur()
		m.password.Focus()
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	return m, signIn(m.http, m.store, m.bus, email, password)
}

// signIn runs the full login flow: authenticate, persist the session,
// publish the event. The store write precedes the publish so that a
// subscriber's re-read observes the new session.
func signIn(c *client.Client, store *session.Store, bus *session.Bus, email, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := c.Login(context.Background(), email, password)
		if err != nil {
			return ResultMsg{Err: err}
		}
		if resp.Token == "" {
			// The backend answered 200 without a token. Older builds
			// fabricated a placeholder here; treat it as a failure
			// instead so a half-configured backend is visible.
			return ResultMsg{Err: errors.New("login succeeded but the server returned no token")}
		}

		profile := client.ProfileFromLogin(resp, email)
		if err := store.Set(session.Session{Token: resp.Token, Profile: profile}); err != nil {
			return ResultMsg{Err: err}
		}
		bus.Publish(session.Event{Type: session.EventLogin, Profile: profile})
		return ResultMsg{Profile: profile}
	}
}

func friendlyError(err error) string {
	switch {
	case client.IsUnauthorized(err):
		return "wrong email or password"
	case client.IsNetwork(err):
		return "cannot reach the server"
	default:
		return err.Error()
	}
}

// Editing reports whether the screen is consuming raw key input.
func (m Model) Editing() bool { return true }

// View renders the login form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleTitle.Render("Parking Garage · Sign in"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.email.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")

	if m.submitting {
		b.WriteString(theme.StyleDimmed.Render("  signing in...") + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(theme.StyleError.Render("  "+m.errMsg) + "\n")
	}

	b.WriteString("\n" + theme.StyleDimmed.Render("  tab:next field  enter:sign in  ctrl+r:register  ctrl+c:quit"))

	form := theme.StyleBorder.Padding(1, 2).Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
