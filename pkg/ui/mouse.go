package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/false0brian/hometypemap/pkg/api"
	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/pins"
)

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.pinModal != nil || m.showHelp {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m.wheelZoom(msg.X, msg.Y, 1)
		case tea.MouseButtonWheelDown:
			return m.wheelZoom(msg.X, msg.Y, -1)
		case tea.MouseButtonLeft:
			return m.mousePress(msg.X, msg.Y)
		}
		return m, nil

	case tea.MouseActionMotion:
		if _, dragging := m.editor.Dragging(); dragging {
			m.editor.DragMove(float64(msg.X), float64(msg.Y), m.planInner())
		}
		return m, nil

	case tea.MouseActionRelease:
		return m.mouseRelease()
	}
	return m, nil
}

func (m Model) wheelZoom(x, y, delta int) (tea.Model, tea.Cmd) {
	if !m.mapRect.contains(x, y) {
		return m, nil
	}
	m.navEvent()
	if m.vp.ZoomBy(delta) {
		return m, m.scheduleSpatialFetch()
	}
	return m, nil
}

func (m Model) mousePress(x, y int) (tea.Model, tea.Cmd) {
	switch {
	case m.mapRect.contains(x, y):
		m.focused = focusMap
		if idx, ok := m.markerAt(x, y); ok {
			m.markerIdx = idx
			return m.activateMarker(m.markers[idx])
		}
		// clicking open water recenters there
		iw, ih := m.mapRect.inner()
		lat, lng := m.vp.cellToLatLng(x-m.mapRect.x-1, y-m.mapRect.y-1, iw, ih)
		m.navEvent()
		m.vp.RecenterTo(lat, lng)
		return m, m.scheduleSpatialFetch()

	case m.cardsRect.contains(x, y):
		m.focused = focusCards
		return m, nil

	case m.planRect.contains(x, y):
		m.focused = focusPlan
		pp, ok := m.pinAt(x, y)
		if ok && m.operator {
			m.editor.DragStart(pp.PinID, pp.X, pp.Y)
			return m, nil
		}
		if ok {
			return m.selectPin(pp.PinID)
		}
		if m.operator && m.sel.Portfolio != nil {
			if px, py, ok := m.editor.ClickToCreate(float64(x), float64(y), m.planInner()); ok {
				return m.openPinModal(px, py)
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) mouseRelease() (tea.Model, tea.Cmd) {
	res, ok := m.editor.DragEnd()
	if !ok {
		return m, nil
	}
	if !res.Moved {
		// press-release without motion is a selection, not a move
		return m.selectPin(res.PinID)
	}
	m.applyPinPosition(res.PinID, res.X, res.Y)
	m.rebuildPins()
	if res.PinID < 0 {
		// first placement of a synthetic pin promotes it to a real one
		title := ""
		if pp := pins.FindByPin(m.placed, res.PinID); pp != nil {
			title = pp.Title
		}
		w := api.PinWrite{PortfolioID: -res.PinID, X: res.X, Y: res.Y, Title: title}
		return m, createPinCmd(m.fetcher, w)
	}
	return m, savePinCmd(m.fetcher, res.PinID, res.X, res.Y)
}

// markerAt hit-tests the marker set at a screen cell. Badges are a couple
// of cells wide, so the test tolerates one column of slop.
func (m Model) markerAt(x, y int) (int, bool) {
	iw, ih := m.mapRect.inner()
	for i, mk := range m.markers {
		col, row, ok := m.vp.project(mk.lat, mk.lng, iw, ih)
		if !ok {
			continue
		}
		sx := m.mapRect.x + 1 + col
		sy := m.mapRect.y + 1 + row
		if y == sy && x >= sx-1 && x <= sx+2 {
			return i, true
		}
	}
	return 0, false
}

// pinAt hit-tests the placed pin set at a screen cell.
func (m Model) pinAt(x, y int) (*pins.PlacedPin, bool) {
	r := m.planInner()
	for i := range m.placed {
		px, py := geo.NormalizedToScreen(m.placed[i].X, m.placed[i].Y, r)
		if y == int(py) && x >= int(px)-1 && x <= int(px)+1 {
			return &m.placed[i], true
		}
	}
	return nil, false
}
