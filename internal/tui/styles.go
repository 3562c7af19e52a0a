package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// renderer ties every style below to a single, swappable color profile,
// so SetColorProfile can downgrade to plain ASCII on a non-TTY or
// NO_COLOR run without rebuilding the styles themselves.
var renderer = lipgloss.NewRenderer(os.Stdout)

// SetColorProfile adjusts the color profile every style in this package
// renders with. Call it once, before the program starts, with the
// profile internal/ui detected for the current terminal.
func SetColorProfile(p termenv.Profile) {
	renderer.SetColorProfile(p)
}

// Color palette
var (
	colorAccent = lipgloss.Color("39") // blue
	colorMuted  = lipgloss.Color("242")
	colorWhite  = lipgloss.Color("15")
)

// Styles for the note-taking TUI.
var (
	titleStyle = renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	paneTitleStyle = renderer.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	selectedItemStyle = renderer.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(colorWhite).
				Bold(true)

	normalItemStyle = renderer.NewStyle().
			Foreground(colorWhite)

	mutedItemStyle = renderer.NewStyle().
			Foreground(colorMuted)

	inputLabelStyle = renderer.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	inputStyle = renderer.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	helpStyle = renderer.NewStyle().
			Foreground(colorMuted)

	statusStyle = renderer.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	errorStyle = renderer.NewStyle().
			Foreground(lipgloss.Color("196"))

	paneBorderStyle = renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted)

	activePaneBorderStyle = renderer.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)
)
