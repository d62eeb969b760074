// Package stats provides the statistics screen: tabbed read-only views over
// the caller's parking record, per-car and monthly aggregates and invoices.
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/theme"
)

// Tab identifies one of the statistics sub-views.
type Tab int

const (
	TabSummary Tab = iota
	TabHistory
	TabMonthly
	TabByCar
	TabInvoices
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabSummary:
		return "summary"
	case TabHistory:
		return "history"
	case TabMonthly:
		return "monthly"
	case TabByCar:
		return "by car"
	case TabInvoices:
		return "invoices"
	default:
		return "?"
	}
}

// LoadedMsg carries everything the tabbed views need.
type LoadedMsg struct {
	Summary  *client.StatisticsSummary
	History  []client.ParkingHistory
	Monthly  []client.MonthlyStatistics
	ByCar    []client.CarStatistics
	Invoices []client.Invoice
	Err      error
}

// KeyMap holds the statistics-screen key bindings.
type KeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
}

// DefaultKeyMap returns the default statistics-screen key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev tab"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the statistics-screen model.
type Model struct {
	http *client.Client
	keys KeyMap

	tab     Tab
	data    LoadedMsg
	loading bool
	errMsg  string
}

// New creates a stats model in the loading state.
func New(http *client.Client) Model {
	return Model{http: http, keys: DefaultKeyMap(), loading: true}
}

// Init fetches all tabs in one sweep.
func (m Model) Init() tea.Cmd {
	return load(m.http)
}

func load(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := c.Summary(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		history, err := c.History(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		monthly, err := c.MonthlyStatistics(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		byCar, err := c.StatisticsByCar(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		invoices, err := c.Invoices(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{
			Summary:  summary,
			History:  history,
			Monthly:  monthly,
			ByCar:    byCar,
			Invoices: invoices,
		}
	}
}

// Update handles messages for the statistics screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.data = msg
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, load(m.http)
		}
	}
	return m, nil
}

// View renders the statistics screen.
func (m Model) View() string {
	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Statistics"))
	lines = append(lines, m.tabBar())
	lines = append(lines, "")

	switch {
	case m.loading:
		lines = append(lines, theme.StyleDimmed.Render("  loading..."))
	case m.errMsg != "":
		lines = append(lines, theme.StyleError.Render("  "+m.errMsg))
	default:
		lines = append(lines, m.tabBody()...)
	}

	lines = append(lines, "")
	lines = append(lines, theme.StyleDimmed.Render("  h/l:switch tab  r:refresh"))
	return strings.Join(lines, "\n")
}

func (m Model) tabBar() string {
	names := make([]string, 0, int(tabCount))
	for t := Tab(0); t < tabCount; t++ {
		name := t.String()
		if t == m.tab {
			name = theme.StyleSelected.Render("[" + name + "]")
		} else {
			name = theme.StyleDimmed.Render(" " + name + " ")
		}
		names = append(names, name)
	}
	return "  " + strings.Join(names, " ")
}

func (m Model) tabBody() []string {
	switch m.tab {
	case TabSummary:
		return m.viewSummary()
	case TabHistory:
		return m.viewHistory()
	case TabMonthly:
		return m.viewMonthly()
	case TabByCar:
		return m.viewByCar()
	case TabInvoices:
		return m.viewInvoices()
	}
	return nil
}

func (m Model) viewSummary() []string {
	s := m.data.Summary
	if s == nil {
		return []string{theme.StyleDimmed.Render("  no data")}
	}
	return []string{
		fmt.Sprintf("  total parkings  %d", s.TotalParkings),
		fmt.Sprintf("  total time      %s", formatSeconds(s.TotalParkingTime)),
		fmt.Sprintf("  total fees      %.2f", s.TotalFee),
	}
}

func (m Model) viewHistory() []string {
	if len(m.data.History) == 0 {
		return []string{theme.StyleDimmed.Render("  no parking history")}
	}
	lines := make([]string, 0, len(m.data.History))
	for _, h := range m.data.History {
		end := h.EndTime
		if end == "" {
			end = theme.StyleSuccess.Render("ongoing")
		}
		dur := h.DurationFormatted
		if dur != "" {
			dur = "  " + dur
		}
		lines = append(lines, fmt.Sprintf("  %s  floor %s spot %s  %s → %s%s  %.2f",
			h.LicensePlate, h.FloorNumber, h.SpotNumber, h.StartTime, end, dur, h.Fee))
	}
	return lines
}

func (m Model) viewMonthly() []string {
	if len(m.data.Monthly) == 0 {
		return []string{theme.StyleDimmed.Render("  no data")}
	}
	lines := make([]string, 0, len(m.data.Monthly))
	for _, mo := range m.data.Monthly {
		lines = append(lines, fmt.Sprintf("  %s  %3d parkings  %s  %.2f",
			mo.Month, mo.ParkingCount, formatSeconds(mo.TotalTime), mo.TotalFee))
	}
	return lines
}

func (m Model) viewByCar() []string {
	if len(m.data.ByCar) == 0 {
		return []string{theme.StyleDimmed.Render("  no data")}
	}
	lines := make([]string, 0, len(m.data.ByCar))
	for _, c := range m.data.ByCar {
		lines = append(lines, fmt.Sprintf("  %s  %3d parkings  %s  %.2f",
			theme.StyleSelected.Render(c.LicensePlate), c.TotalParkings,
			formatSeconds(c.TotalParkingTime), c.TotalFee))
	}
	return lines
}

func (m Model) viewInvoices() []string {
	if len(m.data.Invoices) == 0 {
		return []string{theme.StyleDimmed.Render("  no invoices")}
	}
	lines := make([]string, 0, len(m.data.Invoices))
	for _, inv := range m.data.Invoices {
		status := lipgloss.NewStyle().Foreground(theme.ColorUnpaid).Render("unpaid")
		if inv.IsPaid {
			status = lipgloss.NewStyle().Foreground(theme.ColorPaid).Render("paid")
		}
		lines = append(lines, fmt.Sprintf("  %s  issued %s  due %s  %.2f  %s",
			inv.InvoiceNumber, inv.IssueDate, inv.DueDate, inv.Total, status))
	}
	return lines
}

// formatSeconds renders a second count as "3h 25m".
func formatSeconds(secs int) string {
	d := time.Duration(secs) * time.Second
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", h, min)
}
