// Package theme provides the Lip Gloss color palette and reusable styles
// for the garage TUI. It is a leaf package with no internal imports to
// avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Spot state colors.
var (
	ColorSpotFree     = lipgloss.Color("#22c55e")
	ColorSpotOccupied = lipgloss.Color("#dc2626")
	ColorSpotReserved = lipgloss.Color("#d97706")
)

// Reservation status colors.
var (
	ColorReservationActive    = lipgloss.Color("#16a34a")
	ColorReservationUpcoming  = lipgloss.Color("#2563eb")
	ColorReservationExpired   = lipgloss.Color("#4b5563")
	ColorReservationCancelled = lipgloss.Color("#854d0e")
)

// Invoice colors.
var (
	ColorPaid   = lipgloss.Color("#16a34a")
	ColorUnpaid = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#2089dc")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorSuccess = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDefault = lipgloss.Color("#9ca3af")
)

// SpotColor returns the color for a spot's occupancy.
func SpotColor(occupied bool) lipgloss.Color {
	if occupied {
		return ColorSpotOccupied
	}
	return ColorSpotFree
}

// ReservationColor returns the color for a reservation status string.
func ReservationColor(status string) lipgloss.Color {
	switch status {
	case "active":
		return ColorReservationActive
	case "upcoming", "pending":
		return ColorReservationUpcoming
	case "expired", "completed":
		return ColorReservationExpired
	case "cancelled":
		return ColorReservationCancelled
	default:
		return ColorDefault
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorDanger)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorSuccess)
)

// SpotGlyph returns a glyph for a spot's occupancy.
func SpotGlyph(occupied bool) string {
	if occupied {
		return "■"
	}
	return "□"
}
