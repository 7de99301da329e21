package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - asitop-inspired lime green theme
// Single accent color for professional, distinctive look
const (
	ColorLime     = "154" // Primary accent (#AFFF00) - bright lime green
	ColorLimeDim  = "106" // Dimmed lime for inactive/borders
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds all UI styles for picker rendering.
type Styles struct {
	// Prompt line
	Prompt  lipgloss.Style
	Query   lipgloss.Style
	Spinner lipgloss.Style

	// Rows
	Cursor   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Marker   lipgloss.Style

	// Status bar
	Counter lipgloss.Style
	Dim     lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns styled components for TTY mode.
// Uses asitop-inspired lime green palette.
func DefaultStyles() Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Query:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),

		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Row:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Marker:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),

		Counter: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Prompt:   lipgloss.NewStyle(),
		Query:    lipgloss.NewStyle(),
		Spinner:  lipgloss.NewStyle(),
		Cursor:   lipgloss.NewStyle(),
		Row:      lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle(),
		Marker:   lipgloss.NewStyle(),
		Counter:  lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
