// Package status provides the persistent status bar at the top of the TUI.
package status

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	UserEmail string // empty when logged out
	Screen    string
	Notice    string // transient message, cleared by the app
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	title := theme.StyleTitle.Render("Parking Garage")

	var who string
	if m.UserEmail != "" {
		who = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("● " + m.UserEmail)
	} else {
		who = theme.StyleDimmed.Render("○ signed out")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := title + sep + who
	if m.Screen != "" {
		content += sep + theme.StyleHeader.Render(m.Screen)
	}
	if m.Notice != "" {
		content += sep + lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(m.Notice)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
