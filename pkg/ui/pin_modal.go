package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pinModal collects a title for a new floor-plan pin at pre-filled
// coordinates. Enter submits, esc cancels; both are handled by the
// parent Update.
type pinModal struct {
	title textinput.Model
	x, y  float64
}

func newPinModal(x, y float64) *pinModal {
	ti := textinput.New()
	ti.Placeholder = "pin title (e.g. kitchen)"
	ti.CharLimit = 60
	ti.Width = 40
	ti.Focus()
	return &pinModal{title: ti, x: x, y: y}
}

func (p *pinModal) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.title, cmd = p.title.Update(msg)
	return cmd
}

// Title returns the entered title, trimmed.
func (p *pinModal) Title() string {
	return strings.TrimSpace(p.title.Value())
}

func (p *pinModal) View(theme Theme) string {
	var b strings.Builder
	b.WriteString(theme.Header.Render("New pin") + "\n\n")
	b.WriteString(fmt.Sprintf("position: %.1f%%, %.1f%%\n\n", p.x, p.y))
	b.WriteString(p.title.View() + "\n\n")
	b.WriteString(theme.MutedText.Render("enter save · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(1, 2).
		Render(b.String())
}
