package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/model"
	"github.com/false0brian/hometypemap/pkg/pins"
)

// paneRect is a pane's outer rectangle (border included) in screen cells.
type paneRect struct {
	x, y, w, h int
}

func (r paneRect) contains(px, py int) bool {
	return px >= r.x && px < r.x+r.w && py >= r.y && py < r.y+r.h
}

// inner returns the drawable size inside the border.
func (r paneRect) inner() (w, h int) {
	return r.w - 2, r.h - 2
}

// layout splits the screen: map on the left, cards over floor plan on the
// right, one header row above and one status row below.
func (m *Model) layout() {
	bh := m.height - 2
	if bh < 6 {
		bh = 6
	}
	mw := m.width * 11 / 20
	if mw < 30 {
		mw = 30
	}
	rw := m.width - mw
	if rw < 24 {
		rw = 24
	}
	ch := bh / 2
	m.mapRect = paneRect{x: 0, y: 1, w: mw, h: bh}
	m.cardsRect = paneRect{x: mw, y: 1, w: rw, h: ch}
	m.planRect = paneRect{x: mw, y: 1 + ch, w: rw, h: bh - ch}
	m.cards.SetSize(rw-2, ch-2)
}

// planInner is the floor-plan drawing area in absolute screen
// coordinates; drag math and pin rendering share it.
func (m Model) planInner() geo.Rect {
	return geo.Rect{
		Left:   float64(m.planRect.x + 1),
		Top:    float64(m.planRect.y + 1),
		Width:  float64(m.planRect.w - 2),
		Height: float64(m.planRect.h - 2),
	}
}

func (m Model) View() string {
	if !m.ready || m.width <= 0 {
		return ""
	}
	if m.showHelp {
		return m.helpContent
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.mapView(),
		lipgloss.JoinVertical(lipgloss.Left, m.cardsView(), m.planView()),
	)
	if m.pinModal != nil {
		body = lipgloss.Place(m.width, m.mapRect.h, lipgloss.Center, lipgloss.Center,
			m.pinModal.View(m.theme))
	}

	return m.headerView() + "\n" + body + "\n" + m.statusView()
}

func (m Model) headerView() string {
	title := m.theme.Header.Render("HomeTypeMap")
	b := m.vp.Bounds()
	info := fmt.Sprintf(" %s z%d", m.vp.Mode(), b.Zoom)
	if m.vp.Mode() == model.ModeNearby {
		_, _, radius := m.vp.Nearby()
		info = fmt.Sprintf(" nearby %.0fm", radius)
	}
	info += "  " + m.filterSummary()
	if m.operator {
		info += "  [operator]"
	}
	return title + m.theme.MutedText.Render(runewidth.Truncate(info, m.width-14, "…"))
}

func (m Model) filterSummary() string {
	var parts []string
	if m.filters.WorkScope != "" {
		parts = append(parts, "scope:"+m.filters.WorkScope)
	}
	if m.resolved.EffectiveVendorID != nil {
		parts = append(parts, fmt.Sprintf("vendor:%d", *m.resolved.EffectiveVendorID))
	}
	if m.fav.AutoFilter {
		parts = append(parts, "fav:on")
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, " ")
}

func (m Model) statusView() string {
	style := m.theme.StatusLine
	if m.statusIsError {
		style = m.theme.StatusError
	}
	left := style.Render(runewidth.Truncate(m.status, m.width-20, "…"))
	right := m.theme.MutedText.Render("? help · q quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) paneStyle(f focus) lipgloss.Style {
	if m.focused == f {
		return m.theme.PaneFocused
	}
	return m.theme.PaneBorder
}

// cellCanvas is a grid of pre-styled single-width cells.
type cellCanvas struct {
	w, h  int
	cells [][]string
}

func newCellCanvas(w, h int) *cellCanvas {
	c := &cellCanvas{w: w, h: h, cells: make([][]string, h)}
	for r := range c.cells {
		row := make([]string, w)
		for i := range row {
			row[i] = " "
		}
		c.cells[r] = row
	}
	return c
}

func (c *cellCanvas) set(col, row int, s string) {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return
	}
	c.cells[row][col] = s
}

func (c *cellCanvas) writeString(col, row int, s string, style lipgloss.Style) {
	for _, r := range s {
		if runewidth.RuneWidth(r) > 1 {
			r = '?'
		}
		c.set(col, row, style.Render(string(r)))
		col++
	}
}

func (c *cellCanvas) String() string {
	rows := make([]string, c.h)
	for r := range c.cells {
		rows[r] = strings.Join(c.cells[r], "")
	}
	return strings.Join(rows, "\n")
}

func (m Model) mapView() string {
	iw, ih := m.mapRect.inner()
	c := newCellCanvas(iw, ih)

	// sparse water texture
	for row := 0; row < ih; row += 2 {
		for col := 0; col < iw; col += 4 {
			c.set(col, row, m.theme.MutedText.Render("·"))
		}
	}

	if m.vp.Mode() == model.ModeNearby {
		lat, lng, _ := m.vp.Nearby()
		if col, row, ok := m.vp.project(lat, lng, iw, ih); ok {
			c.writeString(col, row, "+", m.theme.MarkerHot)
		}
	}

	for i, mk := range m.markers {
		col, row, ok := m.vp.project(mk.lat, mk.lng, iw, ih)
		if !ok {
			continue
		}
		var text string
		var style lipgloss.Style
		if mk.kind == markerCluster {
			text = "(" + mk.badge + ")"
			style = m.theme.MarkerCluster
		} else {
			text = "●" + mk.badge
			style = m.theme.MarkerComplex
			if mk.selected {
				style = m.theme.MarkerHot
				if !m.pulseOn {
					style = m.theme.MarkerComplex.Bold(true)
				}
			}
		}
		if i == m.markerIdx && m.focused == focusMap {
			style = style.Underline(true)
		}
		c.writeString(col, row, text, style)
	}

	label := fmt.Sprintf(" %s ", m.vp.Mode())
	if m.spatialLoading {
		label = " loading… "
	}
	c.writeString(1, 0, label, m.theme.MutedText)

	return m.paneStyle(focusMap).Render(c.String())
}

func (m Model) cardsView() string {
	iw, ih := m.cardsRect.inner()
	var content string
	switch {
	case m.sel.UnitType == nil:
		hint := "select a complex and unit type\nto browse portfolios"
		content = lipgloss.Place(iw, ih, lipgloss.Center, lipgloss.Center,
			m.theme.MutedText.Render(hint))
	case m.portfolioLoading:
		content = lipgloss.Place(iw, ih, lipgloss.Center, lipgloss.Center,
			m.theme.MutedText.Render("loading portfolios…"))
	case len(m.portfolios) == 0:
		content = lipgloss.Place(iw, ih, lipgloss.Center, lipgloss.Center,
			m.theme.MutedText.Render("no portfolios match the filters"))
	default:
		content = m.cards.View()
	}
	return m.paneStyle(focusCards).Render(lipgloss.NewStyle().Width(iw).Height(ih).Render(content))
}

func (m Model) planView() string {
	iw, ih := m.planRect.inner()
	c := newCellCanvas(iw, ih)

	switch {
	case m.sel.Complex == nil:
		c.writeString(1, ih/2, "no complex selected", m.theme.MutedText)
	case m.detailLoading:
		c.writeString(1, ih/2, "loading…", m.theme.MutedText)
	case m.noUnitTypes:
		c.writeString(1, ih/2, "no unit types registered for "+m.sel.Complex.Name, m.theme.MutedText)
	case m.detail != nil && m.sel.UnitType == nil:
		c.writeString(1, 0, runewidth.Truncate(m.detail.Name, iw-2, "…"), m.theme.Base.Bold(true))
		for i, ut := range m.detail.UnitTypes {
			if i+2 >= ih {
				break
			}
			code := ut.TypeCode
			if code == "" {
				code = fmt.Sprintf("%.0fm²", ut.AreaM2)
			}
			line := fmt.Sprintf("%d) %s  %.0fm²  %d portfolios", i+1, code, ut.AreaM2, ut.PortfolioCount)
			c.writeString(2, i+2, runewidth.Truncate(line, iw-3, "…"), m.theme.Base)
		}
	case m.sel.UnitType != nil:
		m.drawPlan(c, iw, ih)
	}

	return m.paneStyle(focusPlan).Render(c.String())
}

func (m Model) drawPlan(c *cellCanvas, iw, ih int) {
	r := m.planInner()
	dragID, dragging := m.editor.Dragging()

	for i := range m.placed {
		pp := &m.placed[i]
		x, y := pp.X, pp.Y
		if dragging && pp.PinID == dragID {
			if dx, dy, ok := m.editor.Position(); ok {
				x, y = dx, dy
			}
		}
		px, py := geo.NormalizedToScreen(x, y, r)
		col := int(px) - (m.planRect.x + 1)
		row := int(py) - (m.planRect.y + 1)

		sym := "●"
		style := m.theme.PinStyle
		if pp.Synthetic {
			sym = "○"
			style = m.theme.PinSynth
		}
		selected := m.sel.PinID != nil && *m.sel.PinID == pp.PinID
		if selected {
			style = m.theme.PinHot
			if !m.pulseOn {
				style = m.theme.PinStyle.Bold(true)
			}
		}
		if i == m.pinIdx && m.focused == focusPlan {
			style = style.Underline(true)
		}
		label := sym + " " + runewidth.Truncate(pp.Title, 10, "…")
		c.writeString(col, row, label, style)
	}

	c.writeString(1, 0, runewidth.Truncate(m.planTitle(), iw-2, "…"), m.theme.Base.Bold(true))

	if m.sel.PinID != nil {
		if pp := pins.FindByPin(m.placed, *m.sel.PinID); pp != nil {
			gallery := pp.AfterImages
			if m.gallerySide == model.SideBefore {
				gallery = pp.BeforeImages
			}
			line := fmt.Sprintf("%s · %d photos", m.gallerySide, len(gallery))
			if len(gallery) > 0 {
				line += " · " + gallery[0]
			}
			c.writeString(1, ih-1, runewidth.Truncate(line, iw-2, "…"), m.theme.MutedText)
		}
	}
}
