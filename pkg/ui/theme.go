package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and base styles shared by every view. Styles are
// built from Renderer so tests can render without a terminal.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Featured  lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultTheme returns the standard palette bound to r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		Secondary: lipgloss.AdaptiveColor{Light: "#A06A00", Dark: "#E0B050"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0A7E8C", Dark: "#4FD1E0"},
		Danger:    lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"},
		Featured:  lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD166"},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#DDDDDD"})
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E4E2FF", Dark: "#2E2A5C"}).
		Bold(true)
	return t
}
