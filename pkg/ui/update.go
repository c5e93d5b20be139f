package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/false0brian/hometypemap/pkg/api"
	"github.com/false0brian/hometypemap/pkg/config"
	"github.com/false0brian/hometypemap/pkg/debug"
	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/geoloc"
	"github.com/false0brian/hometypemap/pkg/model"
	"github.com/false0brian/hometypemap/pkg/pins"
)

// workScopes are the cyclable work-scope filter presets ("" = all).
var workScopes = []string{"", "full", "kitchen", "bath", "living"}

// Update is the single mutation point of the engine. Every external
// event (key, mouse, timer, fetch result) arrives here; each async result
// carries the generation it was issued under and is discarded when a
// newer intent has superseded it.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case settleTickMsg:
		// Only the tick armed by the latest navigation event fires a fetch.
		if msg.seq != m.settleSeq {
			return m, nil
		}
		return m, m.issueSpatialFetchNow()

	case pinsFetchedMsg:
		if msg.gen != m.spatialGen || m.vp.Mode() != model.ModeBounds {
			return m, nil
		}
		m.spatialLoading = false
		if msg.err != nil {
			// keep the previously rendered result on screen
			m.setStatus(fmt.Sprintf("map fetch failed: %v", msg.err), true)
			return m, nil
		}
		m.clusters = msg.result.Clusters
		m.complexes = msg.result.Complexes
		m.markerIdx = 0
		m.rebuildMarkers()
		m.setStatus(fmt.Sprintf("%d clusters, %d complexes", len(m.clusters), len(m.complexes)), false)
		return m, nil

	case nearbyFetchedMsg:
		if msg.gen != m.spatialGen || m.vp.Mode() != model.ModeNearby {
			return m, nil
		}
		m.spatialLoading = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("nearby fetch failed: %v", msg.err), true)
			return m, nil
		}
		m.clusters = nil
		m.complexes = msg.result.Items
		// some responses omit distances; fill them from the query center
		lat, lng, _ := m.vp.Nearby()
		for i := range m.complexes {
			if m.complexes[i].DistanceM == nil {
				d := geo.HaversineM(lat, lng, m.complexes[i].Lat, m.complexes[i].Lng)
				m.complexes[i].DistanceM = &d
			}
		}
		m.markerIdx = 0
		m.rebuildMarkers()
		m.setStatus(fmt.Sprintf("%d complexes within %.0fm", len(m.complexes), msg.result.RadiusM), false)
		return m, nil

	case complexDetailMsg:
		if msg.gen != m.detailGen || m.sel.Complex == nil {
			return m, nil
		}
		m.detailLoading = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("loading %s failed: %v", m.sel.Complex.Name, msg.err), true)
			return m, nil
		}
		d := msg.detail
		m.detail = &d
		m.noUnitTypes = len(d.UnitTypes) == 0
		if len(d.UnitTypes) > 0 {
			// the first unit type is auto-selected; "no types" is a
			// terminal empty state, not an error
			return m.selectUnitType(&m.detail.UnitTypes[0])
		}
		return m, nil

	case portfoliosMsg:
		if msg.gen != m.portfolioGen || m.sel.UnitType == nil {
			return m, nil
		}
		m.portfolioLoading = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("portfolio fetch failed: %v", msg.err), true)
			return m, nil
		}
		m.portfolios = msg.page.Items
		m.sel.ReconcilePortfolios(m.portfolios)
		if m.sel.Portfolio == nil {
			m.sel.PinID = nil
		}
		m.pinIdx = 0
		m.rebuildPins()
		m.rebuildCards()
		m.setStatus(fmt.Sprintf("%d portfolios", len(m.portfolios)), false)
		return m, nil

	case geolocatedMsg:
		m.locating = false
		if msg.err != nil {
			// the mode switch is aborted; the map stays in bounds mode
			switch {
			case errors.Is(msg.err, geoloc.ErrPermissionDenied):
				m.setStatus("location permission denied", true)
			case errors.Is(msg.err, context.DeadlineExceeded):
				m.setStatus("location lookup timed out", true)
			default:
				m.setStatus(fmt.Sprintf("location lookup failed: %v", msg.err), true)
			}
			return m, nil
		}
		m.vp.EnterNearby(msg.pos.Lat, msg.pos.Lng)
		m.clearSpatial()
		m.setStatus("showing complexes near you", false)
		return m, m.issueSpatialFetchNow()

	case pinSavedMsg:
		if msg.err != nil {
			// The optimistic position stays; the operator retries by
			// dragging again.
			m.setStatus(fmt.Sprintf("saving pin failed: %v", msg.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("pin saved at %.1f%%, %.1f%%", msg.x, msg.y), false)
		return m, nil

	case pinCreatedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("creating pin failed: %v", msg.err), true)
			return m, nil
		}
		m.attachCreatedPin(msg.portfolioID, msg.pin)
		m.rebuildPins()
		if m.sel.Portfolio != nil && m.sel.Portfolio.ID == msg.portfolioID {
			m.sel.SelectPin(msg.pin.PinID)
		}
		m.setStatus(fmt.Sprintf("pin %q created", msg.pin.Title), false)
		return m, nil

	case pinDeletedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("deleting pin failed: %v", msg.err), true)
			return m, nil
		}
		m.removeDeletedPin(msg.pinID)
		m.rebuildPins()
		m.setStatus("pin deleted", false)
		return m, nil

	case favoriteSavedMsg:
		switch {
		case msg.soft:
			m.setStatus("already in favorites", false)
		case errors.Is(msg.err, api.ErrUnauthenticated):
			m.setStatus("sign in to save favorites", true)
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("saving favorite failed: %v", msg.err), true)
		default:
			m.setStatus("favorite saved", false)
		}
		return m, nil

	case quoteSentMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthenticated) {
				m.setStatus("sign in to request quotes", true)
			} else {
				m.setStatus(fmt.Sprintf("quote request failed: %v", msg.err), true)
			}
			return m, nil
		}
		m.setStatus("quote requested at "+msg.createdAt.Format("15:04"), false)
		return m, nil

	case pulseTickMsg:
		if msg.seq == m.pulseSeq {
			m.pulseOn = false
		}
		return m, nil

	case configChangedMsg:
		if m.cfgWatcher == nil {
			return m, nil
		}
		cmds := []tea.Cmd{watchConfigCmd(m.cfgWatcher)}
		cfg, err := config.LoadFrom(m.cfgPath)
		if err != nil {
			m.setStatus(fmt.Sprintf("config reload failed: %v", err), true)
			return m, tea.Batch(cmds...)
		}
		m.applyConfig(cfg)
		m.setStatus("configuration reloaded", false)
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// applyConfig re-applies a freshly loaded config to the live model.
func (m *Model) applyConfig(cfg config.Config) {
	m.cfg = cfg
	m.settle = time.Duration(cfg.Fetch.SettleMs) * time.Millisecond
	m.theme = NewTheme(cfg.UI.Theme)
	m.vp.minZoom = cfg.Map.MinZoom
	m.vp.maxZoom = cfg.Map.MaxZoom
	m.vp.zoom = geo.ClampInt(m.vp.zoom, m.vp.minZoom, m.vp.maxZoom)
	m.vp.radiusM = cfg.Map.NearbyRadiusM
	m.operator = m.operator || cfg.UI.Operator
	m.helpContent = renderHelp(m.operator)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pinModal != nil {
		return m.updatePinModal(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "tab":
		m.focused = (m.focused + 1) % 3
		return m, nil
	case "shift+tab":
		m.focused = (m.focused + 2) % 3
		return m, nil
	case "n":
		return m.toggleNearby()
	case "f":
		return m.favoriteSelected()
	case "r":
		return m.requestQuote()
	case "c":
		m.copyShareLink()
		return m, nil
	case "s":
		m.exportSnapshot(false)
		return m, nil
	case "S":
		m.exportSnapshot(true)
		return m, nil
	case "v":
		m.toggleGallerySide()
		return m, nil
	case "a":
		return m.toggleAutoFilter()
	case "w":
		return m.cycleWorkScope()
	case "x":
		return m.clearFilters()
	case "V":
		return m.toggleVendorFilter()
	case "esc":
		return m.handleEscape()
	}

	// Digits select a unit type once a complex detail is loaded.
	if m.detail != nil {
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			idx := int(s[0] - '1')
			if idx < len(m.detail.UnitTypes) {
				return m.selectUnitType(&m.detail.UnitTypes[idx])
			}
			return m, nil
		}
	}

	switch m.focused {
	case focusMap:
		return m.handleMapKey(msg)
	case focusCards:
		return m.handleCardsKey(msg)
	default:
		return m.handlePlanKey(msg)
	}
}

// navEvent runs before any viewport navigation. Navigating while in
// nearby mode drops back to bounds mode; the two modes never mix results.
func (m *Model) navEvent() {
	if m.vp.Mode() == model.ModeNearby {
		m.vp.EnterBounds()
		m.clearSpatial()
	}
}

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.navEvent()
		m.vp.Pan(-1, 0)
		return m, m.scheduleSpatialFetch()
	case "right", "l":
		m.navEvent()
		m.vp.Pan(1, 0)
		return m, m.scheduleSpatialFetch()
	case "up", "k":
		m.navEvent()
		m.vp.Pan(0, 1)
		return m, m.scheduleSpatialFetch()
	case "down", "j":
		m.navEvent()
		m.vp.Pan(0, -1)
		return m, m.scheduleSpatialFetch()
	case "+", "=":
		m.navEvent()
		if m.vp.ZoomBy(1) {
			return m, m.scheduleSpatialFetch()
		}
		return m, nil
	case "-", "_":
		m.navEvent()
		if m.vp.ZoomBy(-1) {
			return m, m.scheduleSpatialFetch()
		}
		return m, nil
	case "[":
		if m.markerIdx > 0 {
			m.markerIdx--
		}
		return m, nil
	case "]":
		if m.markerIdx < len(m.markers)-1 {
			m.markerIdx++
		}
		return m, nil
	case "enter":
		if m.markerIdx >= 0 && m.markerIdx < len(m.markers) {
			return m.activateMarker(m.markers[m.markerIdx])
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleCardsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if item, ok := m.cards.SelectedItem().(portfolioItem); ok {
			return m.selectPortfolio(item.card.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.cards, cmd = m.cards.Update(msg)
	return m, cmd
}

func (m Model) handlePlanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "[":
		if m.pinIdx > 0 {
			m.pinIdx--
		}
		return m, nil
	case "]":
		if m.pinIdx < len(m.placed)-1 {
			m.pinIdx++
		}
		return m, nil
	case "enter":
		if m.pinIdx >= 0 && m.pinIdx < len(m.placed) {
			return m.selectPin(m.placed[m.pinIdx].PinID)
		}
		return m, nil
	case "p":
		return m.openPinModal(50, 50)
	case "d":
		return m.deleteSelectedPin()
	}
	return m, nil
}

// activateMarker is the single entry point for marker activation from
// keyboard and mouse. Clusters drill down; complexes become the selection
// root.
func (m Model) activateMarker(mk marker) (tea.Model, tea.Cmd) {
	if mk.kind == markerCluster {
		m.navEvent()
		m.vp.RecenterTo(mk.lat, mk.lng)
		m.vp.ZoomBy(2)
		return m, m.scheduleSpatialFetch()
	}
	return m.selectComplex(mk.complex)
}

func (m Model) selectComplex(c *model.ComplexPin) (tea.Model, tea.Cmd) {
	if c == nil {
		return m, nil
	}
	cp := *c
	m.sel.SelectComplex(&cp)
	m.detail = nil
	m.noUnitTypes = false
	m.detailLoading = true
	m.portfolios = nil
	m.placed = nil
	m.rebuildCards()
	m.detailGen++
	m.portfolioGen++ // orphan any portfolio fetch for the previous selection
	m.rebuildMarkers()

	cmds := []tea.Cmd{
		fetchComplexDetailCmd(m.fetcher, m.detailGen, cp.ID),
		m.startPulse(),
	}
	m.vp.RecenterTo(cp.Lat, cp.Lng)
	if m.vp.Mode() == model.ModeBounds {
		// recentering in bounds mode is a navigation event; in nearby
		// mode the query center is the user, not the selection, so no
		// refetch happens.
		cmds = append(cmds, m.scheduleSpatialFetch())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) selectUnitType(u *model.UnitType) (tea.Model, tea.Cmd) {
	if m.sel.Complex == nil || u == nil {
		return m, nil
	}
	ut := *u
	m.sel.SelectUnitType(&ut)
	m.portfolios = nil
	m.placed = nil
	m.pinIdx = 0
	m.rebuildCards()
	m.portfolioLoading = true
	m.portfolioGen++
	return m, fetchPortfoliosCmd(m.fetcher, m.portfolioGen, m.sel.Complex.ID, ut.ID, m.resolved)
}

func (m Model) selectPortfolio(portfolioID int64) (tea.Model, tea.Cmd) {
	var card *model.PortfolioCard
	for i := range m.portfolios {
		if m.portfolios[i].ID == portfolioID {
			card = &m.portfolios[i]
			break
		}
	}
	if card == nil {
		return m, nil
	}
	m.sel.SelectPortfolio(card)
	// cross-highlight: the card's pin lights up with it
	if pp := pins.FindByPortfolio(m.placed, portfolioID); pp != nil {
		m.sel.SelectPin(pp.PinID)
		m.loadGallerySide(portfolioID, pp)
	}
	return m, m.startPulse()
}

func (m Model) selectPin(pinID int64) (tea.Model, tea.Cmd) {
	pp := pins.FindByPin(m.placed, pinID)
	if pp == nil {
		return m, nil
	}
	// selecting a pin selects its owning card first, keeping the chain
	// consistent top-down
	for i := range m.portfolios {
		if m.portfolios[i].ID == pp.PortfolioID {
			m.sel.SelectPortfolio(&m.portfolios[i])
			break
		}
	}
	m.sel.SelectPin(pinID)
	m.loadGallerySide(pp.PortfolioID, pp)
	m.rebuildCards()
	return m, m.startPulse()
}

func (m *Model) loadGallerySide(portfolioID int64, pp *pins.PlacedPin) {
	var remembered *model.GallerySide
	if m.prefs != nil {
		if side, ok, err := m.prefs.GallerySide(portfolioID); err == nil && ok {
			remembered = &side
		}
	}
	m.gallerySide = pins.GallerySideFor(remembered, len(pp.AfterImages) > 0, len(pp.BeforeImages) > 0)
}

func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	if _, dragging := m.editor.Dragging(); dragging {
		m.editor.Cancel()
		return m, nil
	}
	switch {
	case m.sel.PinID != nil:
		m.sel.PinID = nil
	case m.sel.Portfolio != nil:
		m.sel.SelectPortfolio(nil)
	case m.sel.UnitType != nil:
		m.sel.SelectUnitType(nil)
		m.portfolios = nil
		m.placed = nil
		m.rebuildCards()
	case m.sel.Complex != nil:
		m.sel.Clear()
		m.detail = nil
		m.noUnitTypes = false
		m.portfolios = nil
		m.placed = nil
		m.rebuildCards()
		m.rebuildMarkers()
	}
	return m, nil
}

func (m Model) toggleNearby() (tea.Model, tea.Cmd) {
	if m.vp.Mode() == model.ModeNearby {
		m.vp.EnterBounds()
		m.clearSpatial()
		m.setStatus("map mode", false)
		return m, m.issueSpatialFetchNow()
	}
	if m.locating {
		return m, nil
	}
	if m.locator == nil {
		m.setStatus("geolocation is not configured", true)
		return m, nil
	}
	// mode does not switch until the lookup succeeds
	m.locating = true
	m.setStatus("locating...", false)
	timeout := time.Duration(m.cfg.Fetch.GeolocateTimeoutS) * time.Second
	return m, geolocateCmd(m.locator, timeout)
}

func (m Model) favoriteSelected() (tea.Model, tea.Cmd) {
	if m.sel.Portfolio == nil {
		m.setStatus("select a portfolio to favorite", true)
		return m, nil
	}
	return m, favoriteCmd(m.fetcher, m.sel.Portfolio.ID)
}

func (m Model) requestQuote() (tea.Model, tea.Cmd) {
	if m.sel.Portfolio == nil {
		m.setStatus("select a portfolio to request a quote", true)
		return m, nil
	}
	p := m.sel.Portfolio
	req := api.QuoteRequest{
		PortfolioID: &p.ID,
		VendorID:    p.VendorID,
		Message:     fmt.Sprintf("Quote request for %q", p.Title),
	}
	return m, quoteCmd(m.fetcher, req)
}

func (m *Model) toggleGallerySide() {
	if m.sel.Portfolio == nil {
		m.setStatus("select a portfolio first", true)
		return
	}
	if m.gallerySide == model.SideAfter {
		m.gallerySide = model.SideBefore
	} else {
		m.gallerySide = model.SideAfter
	}
	if m.prefs != nil {
		if err := m.prefs.SetGallerySide(m.sel.Portfolio.ID, m.gallerySide); err != nil {
			debug.Log("persisting gallery side: %v", err)
		}
	}
	m.setStatus("showing "+m.gallerySide.String()+" photos", false)
}

func (m Model) toggleAutoFilter() (tea.Model, tea.Cmd) {
	m.fav.AutoFilter = !m.fav.AutoFilter
	if m.prefs != nil {
		if err := m.prefs.SetAutoFilter(m.fav.AutoFilter); err != nil {
			debug.Log("persisting auto-filter: %v", err)
		}
	}
	if m.fav.AutoFilter {
		m.setStatus("favorite-vendor filter on", false)
	} else {
		m.setStatus("favorite-vendor filter off", false)
	}
	return m.applyFilters()
}

func (m Model) cycleWorkScope() (tea.Model, tea.Cmd) {
	next := 0
	for i, s := range workScopes {
		if s == m.filters.WorkScope {
			next = (i + 1) % len(workScopes)
			break
		}
	}
	m.filters.WorkScope = workScopes[next]
	if m.filters.WorkScope == "" {
		m.setStatus("work scope: all", false)
	} else {
		m.setStatus("work scope: "+m.filters.WorkScope, false)
	}
	return m.applyFilters()
}

func (m Model) clearFilters() (tea.Model, tea.Cmd) {
	m.filters = model.Filters{}
	m.setStatus("filters cleared", false)
	return m.applyFilters()
}

func (m Model) toggleVendorFilter() (tea.Model, tea.Cmd) {
	switch {
	case m.filters.VendorID != nil:
		m.filters.VendorID = nil
		m.setStatus("vendor filter off", false)
	case m.sel.Portfolio != nil && m.sel.Portfolio.VendorID != nil:
		v := *m.sel.Portfolio.VendorID
		m.filters.VendorID = &v
		m.setStatus("filtering by "+m.sel.Portfolio.VendorName, false)
	default:
		m.setStatus("selected portfolio has no vendor", true)
		return m, nil
	}
	return m.applyFilters()
}

// applyFilters re-resolves the filter set and re-triggers the fetches it
// parameterizes, but only when the resolved values actually changed.
func (m Model) applyFilters() (tea.Model, tea.Cmd) {
	next := m.filters.Resolve(m.fav)
	if next.Equal(m.resolved) {
		return m, nil
	}
	m.resolved = next
	cmds := []tea.Cmd{m.issueSpatialFetchNow()}
	if m.sel.Complex != nil && m.sel.UnitType != nil {
		m.portfolioLoading = true
		m.portfolioGen++
		cmds = append(cmds, fetchPortfoliosCmd(m.fetcher, m.portfolioGen, m.sel.Complex.ID, m.sel.UnitType.ID, m.resolved))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) deleteSelectedPin() (tea.Model, tea.Cmd) {
	if !m.operator {
		return m, nil
	}
	if m.sel.PinID == nil {
		m.setStatus("no pin selected", true)
		return m, nil
	}
	id := *m.sel.PinID
	if id < 0 {
		m.setStatus("placeholder pins have nothing to delete", true)
		return m, nil
	}
	return m, deletePinCmd(m.fetcher, id)
}

// applyPinPosition commits an optimistic position into the backing data.
func (m *Model) applyPinPosition(pinID int64, x, y float64) {
	if pinID < 0 {
		m.overrides[-pinID] = pins.Override{X: x, Y: y}
		return
	}
	for i := range m.portfolios {
		fps := m.portfolios[i].FloorPlanPins
		for j := range fps {
			if fps[j].PinID == pinID {
				fps[j].X, fps[j].Y = x, y
				return
			}
		}
	}
}

func (m *Model) attachCreatedPin(portfolioID int64, pin model.FloorPlanPin) {
	delete(m.overrides, portfolioID)
	for i := range m.portfolios {
		if m.portfolios[i].ID == portfolioID {
			m.portfolios[i].FloorPlanPins = append(m.portfolios[i].FloorPlanPins, pin)
			return
		}
	}
}

func (m *Model) removeDeletedPin(pinID int64) {
	if m.sel.PinID != nil && *m.sel.PinID == pinID {
		m.sel.PinID = nil
	}
	for i := range m.portfolios {
		fps := m.portfolios[i].FloorPlanPins
		for j := range fps {
			if fps[j].PinID == pinID {
				m.portfolios[i].FloorPlanPins = append(fps[:j], fps[j+1:]...)
				return
			}
		}
	}
}

func (m Model) openPinModal(x, y float64) (tea.Model, tea.Cmd) {
	if !m.operator {
		return m, nil
	}
	if m.sel.Portfolio == nil {
		m.setStatus("select a portfolio before placing a pin", true)
		return m, nil
	}
	m.pinModal = newPinModal(x, y)
	return m, nil
}

func (m Model) updatePinModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pinModal = nil
		return m, nil
	case "enter":
		modal := m.pinModal
		m.pinModal = nil
		if m.sel.Portfolio == nil {
			return m, nil
		}
		w := api.PinWrite{
			PortfolioID: m.sel.Portfolio.ID,
			X:           geo.Clamp(modal.x, 0, 100),
			Y:           geo.Clamp(modal.y, 0, 100),
			Title:       modal.Title(),
		}
		m.setStatus("creating pin...", false)
		return m, createPinCmd(m.fetcher, w)
	}
	cmd := m.pinModal.Update(msg)
	return m, cmd
}
