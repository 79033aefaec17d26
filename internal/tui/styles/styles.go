// Package styles holds the lipgloss styles the live dashboard renders with:
// one accent color per role (labels, values, error counts) rather than a
// style per widget, so a panel's look stays consistent as the dashboard
// grows.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("#7D56F4")
	ColorSecondary = lipgloss.Color("#04B575")
	ColorError     = lipgloss.Color("#FF5F87")
	ColorSubtle    = lipgloss.Color("#767676")
	ColorBorder    = lipgloss.Color("#3C3C3C")
)

var (
	// Panel frames the dashboard body: the run header, progress bar, live
	// counts and latencies, and the throughput sparkline.
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorSubtle)

	Subtle = lipgloss.NewStyle().Foreground(ColorSubtle)

	// Value renders a live metric (rate, count, latency).
	Value = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	// Success renders the ok-call count.
	Success = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	// Error renders the error count.
	Error = lipgloss.NewStyle().Foreground(ColorError)

	KeyDesc = lipgloss.NewStyle().Foreground(ColorSubtle)
)
