package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, carried from the teacher's indexing dashboard: a single
// lime accent rather than a multi-color theme.
const (
	ColorLime     = "154"
	ColorWhite    = "255"
	ColorGray     = "245"
	ColorDarkGray = "238"
	ColorYellow   = "220"
)

// Styles holds the lipgloss styles the dashboard renders with.
type Styles struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Dim    lipgloss.Style
	Warn   lipgloss.Style
	Border lipgloss.Style
}

// DefaultStyles returns the lime-accented palette.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Value:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Warn:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components, for NO_COLOR or non-TTY
// fallback.
func NoColorStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle(),
		Label:  lipgloss.NewStyle(),
		Value:  lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle(),
		Warn:   lipgloss.NewStyle(),
		Border: lipgloss.NewStyle(),
	}
}

// GetStyles picks the palette for noColor.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
