// Package profile provides the account screen: show the signed-in user,
// edit the display name and sign out.
package profile

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/session"
	"github.com/parking-garage/tui/internal/theme"
)

// LoadedMsg is returned after fetching the current user.
type LoadedMsg struct {
	Profile *session.Profile
	Err     error
}

// SavedMsg is returned after a profile update.
type SavedMsg struct {
	Profile session.Profile
	Err     error
}

// LoggedOutMsg is returned once the local session is gone. A server-side
// logout failure is reported but never blocks the local sign-out.
type LoggedOutMsg struct {
	ServerErr error
}

// KeyMap holds the profile-screen key bindings.
type KeyMap struct {
	Edit    key.Binding
	Logout  key.Binding
	Refresh key.Binding
	Submit  key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the default profile-screen key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit name"),
		),
		Logout: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "sign out"),
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

// Model is the profile-screen model.
type Model struct {
	http  *client.Client
	store *session.Store
	bus   *session.Bus
	keys  KeyMap

	profile session.Profile
	editing bool
	name    textinput.Model
	loading bool
	busy    bool
	errMsg  string
	notice  string
}

// New creates a profile model seeded from the persisted session, then
// refreshed from the server on Init.
func New(http *client.Client, store *session.Store, bus *session.Bus) Model {
	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 64

	m := Model{http: http, store: store, bus: bus, keys: DefaultKeyMap(), name: name, loading: true}
	if sess, ok := store.Get(); ok {
		m.profile = sess.Profile
	}
	return m
}

// Init fetches the authoritative profile.
func (m Model) Init() tea.Cmd {
	return load(m.http)
}

func load(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		p, err := c.CurrentUser(context.Background())
		return LoadedMsg{Profile: p, Err: err}
	}
}

// Editing reports whether the name field currently has focus.
func (m Model) Editing() bool {
	return m.editing
}

// Update handles messages for the profile screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			// Keep showing the persisted copy when the server is unreachable.
			if !client.IsUnauthorized(msg.Err) {
				m.errMsg = msg.Err.Error()
			}
			return m, nil
		}
		m.errMsg = ""
		if msg.Profile != nil {
			m.profile = *msg.Profile
			m.syncStore()
		}
		return m, nil

	case SavedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.editing = false
		m.name.Blur()
		m.profile = msg.Profile
		m.syncStore()
		m.notice = "profile updated"
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.editing {
			return m.updateEdit(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			m.notice = ""
			return m, load(m.http)

		case key.Matches(msg, m.keys.Edit):
			m.editing = true
			m.errMsg = ""
			m.notice = ""
			m.name.SetValue(m.profile.Name)
			return m, m.name.Focus()

		case key.Matches(msg, m.keys.Logout):
			m.busy = true
			return m, m.logout()
		}
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.editing = false
		m.name.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		name := strings.TrimSpace(m.name.Value())
		if name == "" {
			m.errMsg = "name cannot be empty"
			return m, nil
		}
		updated := m.profile
		updated.Name = name
		m.busy = true
		m.errMsg = ""
		http := m.http
		return m, func() tea.Msg {
			return SavedMsg{Profile: updated, Err: http.UpdateProfile(context.Background(), updated)}
		}
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

// logout tears down the session. The server call is best effort; the local
// session is always removed and the logout event always published so the
// rest of the program converges to the signed-out state.
func (m Model) logout() tea.Cmd {
	http, store, bus := m.http, m.store, m.bus
	return func() tea.Msg {
		serverErr := http.Logout(context.Background())
		if err := store.Clear(); err != nil && serverErr == nil {
			serverErr = err
		}
		bus.Publish(session.Event{Type: session.EventLogout})
		return LoggedOutMsg{ServerErr: serverErr}
	}
}

func (m *Model) syncStore() {
	if sess, ok := m.store.Get(); ok {
		sess.Profile = m.profile
		_ = m.store.Set(sess)
	}
}

// View renders the profile screen.
func (m Model) View() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Profile"))

	if m.loading {
		lines = append(lines, theme.StyleDimmed.Render("  loading..."))
	}

	lines = append(lines, "  email  "+m.profile.Email)
	if m.editing {
		lines = append(lines, "  name   "+m.name.View())
	} else {
		lines = append(lines, "  name   "+m.profile.Name)
	}
	if m.profile.Role == session.RoleAdmin {
		lines = append(lines, "  role   "+theme.StyleSelected.Render("admin"))
	}

	if m.busy {
		lines = append(lines, theme.StyleDimmed.Render("  working..."))
	}
	if m.errMsg != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	}
	if m.notice != "" {
		lines = append(lines, theme.StyleSuccess.Render("  "+m.notice))
	}

	lines = append(lines, "")
	if m.editing {
		lines = append(lines, theme.StyleDimmed.Render("  enter:save  esc:back"))
	} else {
		lines = append(lines, theme.StyleDimmed.Render("  e:edit name  x:sign out  r:refresh"))
	}
	return strings.Join(lines, "\n")
}
