package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# HomeTypeMap

## Map
- arrows / hjkl: pan
- +/-: zoom, mouse wheel works too
- [ ]: step through markers, enter: open
- n: toggle nearby mode (uses your location)
- click a cluster to zoom in, a complex to open it

## Browsing
- 1-9: pick a unit type
- enter on a card: highlight its pin on the floor plan
- v: flip before/after photos
- f: favorite · r: request a quote · c: copy share link
- w: cycle work scope · V: filter by this vendor · a: auto favorite filter · x: clear filters
- s / S: export the floor plan as SVG / PNG

## General
- tab: switch pane · esc: step selection back · q: quit
`

const operatorHelpMarkdown = `
## Operator
- drag a pin to move it (saves on release)
- click empty floor plan: place a new pin
- p: place a pin at the center · d: delete the selected pin
`

// renderHelp renders the help overlay once at startup.
func renderHelp(operator bool) string {
	md := helpMarkdown
	if operator {
		md += operatorHelpMarkdown
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
