// Package register provides the account-creation screen.
package register

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// ResultMsg is returned after a registration attempt. Registration does
// not log in; the user signs in afterwards.
type ResultMsg struct {
	Err error
}

// BackMsg asks the app to return to the login screen.
type BackMsg struct{}

// KeyMap holds the register-specific key bindings.
type KeyMap struct {
	Next   key.Binding
	Submit key.Binding
	Back   key.Binding
}

// DefaultKeyMap returns the default register key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "create account"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to sign in"),
		),
	}
}

// Model is the registration screen model.
type Model struct {
	http *client.Client
	keys KeyMap

	fields  []textinput.Model // name, email, password
	focused int

	submitting bool
	done       bool
	errMsg     string

	width  int
	height int
}

// New creates a registration model with the name field focused.
func New(http *client.Client) Model {
	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 128
	name.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return Model{
		http:   http,
		keys:   DefaultKeyMap(),
		fields: []textinput.Model{name, email, password},
	}
}

// Init is a no-op; the form waits for input.
func (m Model) Init() tea.Cmd { return nil }

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Editing reports whether the screen is consuming raw key input.
func (m Model) Editing() bool { return true }

// Update handles messages for the registration screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.done = true
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		if m.submitting {
			return m, nil
		}
		if m.done {
			// Any other key after success returns to sign in.
			return m, func() tea.Msg { return BackMsg{} }
		}
		switch {
		case key.Matches(msg, m.keys.Next):
			m.focusField((m.focused + 1) % len(m.fields))
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			if m.focused < len(m.fields)-1 {
				m.focusField(m.focused + 1)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.fields[m.focused], cmd = m.fields[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) {
	for j := range m.fields {
		if j == i {
			m.fields[j].Focus()
		} else {
			m.fields[j].Blur()
		}
	}
	m.focused = i
}

func (m Model) submit() (Model, tea.Cmd) {
	name := strings.TrimSpace(m.fields[0].Value())
	email := strings.TrimSpace(m.fields[1].Value())
	password := m.fields[2].Value()
	if name == "" || email == "" || password == "" {
		m.errMsg = "all fields are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	http := m.http
	return m, func() tea.Msg {
		return ResultMsg{Err: http.Register(context.Background(), name, email, password)}
	}
}

// View renders the registration form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleTitle.Render("Parking Garage · Create account"))
	b.WriteString("\n\n")
	for _, f := range m.fields {
		b.WriteString("  " + f.View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(theme.StyleDimmed.Render("  creating account...") + "\n")
	case m.done:
		b.WriteString(theme.StyleSuccess.Render("  account created; press any key to sign in") + "\n")
	case m.errMsg != "":
		b.WriteString(theme.StyleError.Render("  "+m.errMsg) + "\n")
	}

	b.WriteString("\n" + theme.StyleDimmed.Render("  tab:next field  enter:create  esc:back"))

	form := theme.StyleBorder.Padding(1, 2).Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
