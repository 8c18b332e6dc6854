package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	// Cyberpunk color palette
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	darkBg      = lipgloss.Color("#0A0E27")
	dimWhite    = lipgloss.Color("#B0B0B0")
)

// styles is the palette bound to one renderer, so color detection follows
// the writer the summary is rendered for
type styles struct {
	panel   lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	bar     lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	if !colorEnabled {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(0, 1),
		title: r.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1),
		label: r.NewStyle().
			Foreground(neonCyan).
			Bold(true),
		value: r.NewStyle().
			Foreground(neonYellow),
		bar: r.NewStyle().
			Foreground(neonGreen),
		dim: r.NewStyle().
			Foreground(dimWhite).
			Faint(true),
		success: r.NewStyle().
			Foreground(neonGreen).
			Bold(true),
		warning: r.NewStyle().
			Foreground(neonOrange).
			Bold(true),
	}
}
