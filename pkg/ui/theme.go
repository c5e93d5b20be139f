package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the adaptive colors and pre-computed styles the views
// render with. Styles are created once at startup instead of per-frame.
type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	Water   lipgloss.AdaptiveColor
	Cluster lipgloss.AdaptiveColor
	Complex lipgloss.AdaptiveColor
	Pin     lipgloss.AdaptiveColor
	Synth   lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	OK      lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Base          lipgloss.Style
	Header        lipgloss.Style
	PaneBorder    lipgloss.Style
	PaneFocused   lipgloss.Style
	StatusLine    lipgloss.Style
	StatusError   lipgloss.Style
	MarkerCluster lipgloss.Style
	MarkerComplex lipgloss.Style
	MarkerHot     lipgloss.Style
	PinStyle      lipgloss.Style
	PinSynth      lipgloss.Style
	PinHot        lipgloss.Style
	MutedText     lipgloss.Style
}

// NewTheme builds the theme for the configured name. Anything other than
// "light" gets the default dark-leaning adaptive palette.
func NewTheme(name string) Theme {
	t := Theme{
		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Water:   lipgloss.AdaptiveColor{Light: "#C9E4F5", Dark: "#1B2B3A"},
		Cluster: lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Complex: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Pin:     lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Synth:   lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6272A4"},
		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		OK:      lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
	}
	_ = name // reserved for a real light/dark split; adaptive covers both today

	t.Base = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Header = lipgloss.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.PaneBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	t.PaneFocused = t.PaneBorder.BorderForeground(t.Primary)
	t.StatusLine = lipgloss.NewStyle().Foreground(t.Subtext)
	t.StatusError = lipgloss.NewStyle().Foreground(t.Danger).Bold(true)
	t.MarkerCluster = lipgloss.NewStyle().Foreground(t.Cluster).Bold(true)
	t.MarkerComplex = lipgloss.NewStyle().Foreground(t.Complex)
	t.MarkerHot = lipgloss.NewStyle().Foreground(t.Danger).Bold(true)
	t.PinStyle = lipgloss.NewStyle().Foreground(t.Pin)
	t.PinSynth = lipgloss.NewStyle().Foreground(t.Synth)
	t.PinHot = lipgloss.NewStyle().Foreground(t.Danger).Bold(true)
	t.MutedText = lipgloss.NewStyle().Foreground(t.Secondary)

	return t
}
