package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/false0brian/hometypemap/pkg/config"
	"github.com/false0brian/hometypemap/pkg/debug"
	"github.com/false0brian/hometypemap/pkg/export"
	"github.com/false0brian/hometypemap/pkg/geoloc"
	"github.com/false0brian/hometypemap/pkg/model"
	"github.com/false0brian/hometypemap/pkg/pins"
	"github.com/false0brian/hometypemap/pkg/watcher"
)

// focus represents which pane has keyboard focus.
type focus int

const (
	focusMap focus = iota
	focusCards
	focusPlan
)

// Model is the main Bubble Tea model for htm. It is the single state
// container: the viewport, the fetched spatial data, the selection chain,
// the resolved pin layer, and the operator editor all live here and are
// mutated only inside Update.
type Model struct {
	// Collaborators
	fetcher    Fetcher
	locator    geoloc.Locator
	prefs      Prefs
	cfgWatcher *watcher.Watcher
	cfg        config.Config
	cfgPath    string

	// Viewport. Bounds always reflect the visual state; only the derived
	// fetch is debounced.
	vp        mapViewport
	settle    time.Duration
	settleSeq int

	// Per-slice fetch generations. A result carrying a generation other
	// than the current one is stale and silently discarded.
	spatialGen   int
	detailGen    int
	portfolioGen int

	// Latest committed spatial result
	clusters       []model.ClusterPin
	complexes      []model.ComplexPin
	markers        []marker
	spatialLoading bool

	// Selection cascade and its dependent data
	sel              model.Selection
	detail           *model.ComplexDetail
	detailLoading    bool
	noUnitTypes      bool
	portfolios       []model.PortfolioCard
	portfolioLoading bool
	placed           []pins.PlacedPin
	overrides        map[int64]pins.Override

	// Filters
	filters  model.Filters
	fav      model.FavoritePrefs
	resolved model.ResolvedFilters

	gallerySide model.GallerySide

	// Operator pin editor
	operator bool
	editor   pins.Editor
	pinModal *pinModal

	// Presentation
	cards         list.Model
	theme         Theme
	width, height int
	ready         bool
	focused       focus
	showHelp      bool
	helpContent   string

	// Pane geometry from the last layout; mouse events hit-test against
	// these.
	mapRect   paneRect
	cardsRect paneRect
	planRect  paneRect

	// Keyboard cursor over the marker set / pin set.
	markerIdx int
	pinIdx    int

	// Status line: the single human-readable record of the latest
	// asynchronous outcome.
	status        string
	statusIsError bool

	// Highlight pulse
	pulseSeq int
	pulseOn  bool

	// geolocation in flight
	locating bool
}

// Options configures NewModel.
type Options struct {
	Fetcher    Fetcher
	Locator    geoloc.Locator
	Prefs      Prefs
	Config     config.Config
	ConfigPath string
	Watcher    *watcher.Watcher
	Operator   bool
}

// NewModel builds the initial model. Favorite preferences are read once
// here; later changes arrive via the config watcher or explicit toggles.
func NewModel(opts Options) Model {
	cfg := opts.Config
	theme := NewTheme(cfg.UI.Theme)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	cards := list.New(nil, delegate, 0, 0)
	cards.Title = "Portfolios"
	cards.SetShowHelp(false)
	cards.SetShowStatusBar(false)
	cards.SetFilteringEnabled(false)

	m := Model{
		fetcher:    opts.Fetcher,
		locator:    opts.Locator,
		prefs:      opts.Prefs,
		cfgWatcher: opts.Watcher,
		cfg:        cfg,
		cfgPath:    opts.ConfigPath,
		vp: newMapViewport(
			cfg.Map.CenterLat, cfg.Map.CenterLng,
			cfg.Map.Zoom, cfg.Map.MinZoom, cfg.Map.MaxZoom,
			cfg.Map.NearbyRadiusM,
		),
		settle:    time.Duration(cfg.Fetch.SettleMs) * time.Millisecond,
		overrides: make(map[int64]pins.Override),
		operator:  opts.Operator || cfg.UI.Operator,
		cards:     cards,
		theme:     theme,
		width:     120,
		height:    40,
		ready:     true,
		status:    "htm ready",
	}

	if opts.Prefs != nil {
		if fav, err := opts.Prefs.FavoritePrefs(); err == nil {
			m.fav = fav
		} else {
			debug.Log("loading favorite prefs: %v", err)
		}
	}
	m.resolved = m.filters.Resolve(m.fav)
	m.helpContent = renderHelp(m.operator)
	m.layout()

	// The initial fetch is issued from Init with this generation already
	// in place.
	m.spatialGen = 1
	m.spatialLoading = true

	return m
}

// Init schedules the first viewport fetch and arms the config watcher.
// Init runs on a copy, so the fetch generation was already recorded by
// NewModel instead of being bumped here.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchPinsCmd(m.fetcher, m.spatialGen, m.vp.Bounds(), m.resolved)}
	if m.cfgWatcher != nil {
		cmds = append(cmds, watchConfigCmd(m.cfgWatcher))
	}
	return tea.Batch(cmds...)
}

// Bounds exposes the current viewport rectangle. It is always in sync
// with the rendered map, never debounced.
func (m Model) Bounds() model.Bounds { return m.vp.Bounds() }

// Mode exposes the active fetch mode.
func (m Model) Mode() model.Mode { return m.vp.Mode() }

// Selection exposes the current selection chain.
func (m Model) Selection() model.Selection { return m.sel }

// Status exposes the status line (latest asynchronous outcome).
func (m Model) Status() (string, bool) { return m.status, m.statusIsError }

// PlacedPins exposes the resolved pin layer.
func (m Model) PlacedPins() []pins.PlacedPin { return m.placed }

// Markers exposes the current marker set.
func (m Model) Markers() []marker { return m.markers }

// setStatus records an outcome on the status line.
func (m *Model) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusIsError = isError
}

// scheduleSpatialFetch (re)starts the settle debounce. Any navigation
// before the delay elapses supersedes the pending tick, so at most one
// fetch is issued per pause in navigation.
func (m *Model) scheduleSpatialFetch() tea.Cmd {
	m.settleSeq++
	return settleTickCmd(m.settleSeq, m.settle)
}

// issueSpatialFetchNow skips the debounce and fetches immediately (mode
// switches, initial load). It bumps the spatial generation so any result
// still in flight is discarded on arrival.
func (m *Model) issueSpatialFetchNow() tea.Cmd {
	m.settleSeq++ // invalidate any pending settle tick as well
	m.spatialGen++
	m.spatialLoading = true
	if m.vp.Mode() == model.ModeNearby {
		lat, lng, radius := m.vp.Nearby()
		return fetchNearbyCmd(m.fetcher, m.spatialGen, lat, lng, radius, m.resolved)
	}
	return fetchPinsCmd(m.fetcher, m.spatialGen, m.vp.Bounds(), m.resolved)
}

// clearSpatial empties the rendered spatial result. Used on mode switch
// so pins from the previous mode never mix with the next mode's result.
func (m *Model) clearSpatial() {
	m.clusters = nil
	m.complexes = nil
	m.markers = nil
}

// rebuildMarkers recomputes the marker set from the committed result and
// the current selection. Clear-then-repopulate, never diffed.
func (m *Model) rebuildMarkers() {
	m.markers = buildMarkers(m.vp.Mode(), m.clusters, m.complexes, m.sel)
}

// rebuildPins recomputes the pin layer from the portfolio list.
func (m *Model) rebuildPins() {
	m.placed = pins.MapPins(m.portfolios, m.overrides)
}

// rebuildCards repopulates the card list and keeps its cursor on the
// selected portfolio.
func (m *Model) rebuildCards() {
	items := make([]list.Item, len(m.portfolios))
	selIdx := -1
	for i := range m.portfolios {
		items[i] = portfolioItem{card: m.portfolios[i]}
		if m.sel.Portfolio != nil && m.portfolios[i].ID == m.sel.Portfolio.ID {
			selIdx = i
		}
	}
	m.cards.SetItems(items)
	if selIdx >= 0 {
		m.cards.Select(selIdx)
	}
}

// startPulse begins a highlight pulse; the returned command ends it.
// Restarting invalidates the previous timer via the sequence number.
func (m *Model) startPulse() tea.Cmd {
	m.pulseSeq++
	m.pulseOn = true
	return pulseTickCmd(m.pulseSeq)
}

// shareLink is the copyable URL for a portfolio.
func (m Model) shareLink(portfolioID int64) string {
	return fmt.Sprintf("%s/portfolios/%d", m.cfg.API.BaseURL, portfolioID)
}

// copyShareLink puts the selected portfolio's link on the clipboard.
func (m *Model) copyShareLink() {
	if m.sel.Portfolio == nil {
		m.setStatus("no portfolio selected", true)
		return
	}
	link := m.shareLink(m.sel.Portfolio.ID)
	if err := clipboard.WriteAll(link); err != nil {
		m.setStatus(fmt.Sprintf("clipboard: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("copied %s", link), false)
}

// exportSnapshot writes the current floor plan's pin layout to disk.
func (m *Model) exportSnapshot(asPNG bool) {
	if m.sel.UnitType == nil || len(m.placed) == 0 {
		m.setStatus("nothing to export", true)
		return
	}
	title := m.planTitle()
	var selected int64
	if m.sel.PinID != nil {
		selected = *m.sel.PinID
	}
	opts := export.SnapshotOptions{Title: title, Pins: m.placed, SelectedPinID: selected}

	dir := config.StateDir()
	var path string
	var err error
	if asPNG {
		path = filepath.Join(dir, fmt.Sprintf("floorplan-%d.png", m.sel.UnitType.ID))
		err = export.SavePNG(path, opts)
	} else {
		path = filepath.Join(dir, fmt.Sprintf("floorplan-%d.svg", m.sel.UnitType.ID))
		err = export.SaveSVG(path, opts)
	}
	if err != nil {
		m.setStatus(fmt.Sprintf("export failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("exported %s", path), false)
}

// planTitle labels exports and the floor-plan pane header.
func (m Model) planTitle() string {
	if m.detail == nil || m.sel.UnitType == nil {
		return "floor plan"
	}
	code := m.sel.UnitType.TypeCode
	if code == "" {
		code = fmt.Sprintf("%.0fm²", m.sel.UnitType.AreaM2)
	}
	return fmt.Sprintf("%s %s", m.detail.Name, code)
}

// portfolioItem adapts a PortfolioCard to the bubbles list.
type portfolioItem struct {
	card model.PortfolioCard
}

func (p portfolioItem) Title() string { return p.card.Title }

func (p portfolioItem) Description() string {
	desc := p.card.WorkScope
	if p.card.Style != "" {
		desc += " · " + p.card.Style
	}
	if p.card.VendorName != "" {
		desc += " · " + p.card.VendorName
	}
	return desc
}

func (p portfolioItem) FilterValue() string { return p.card.Title }
