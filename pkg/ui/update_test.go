package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/false0brian/hometypemap/pkg/api"
	"github.com/false0brian/hometypemap/pkg/config"
	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/geoloc"
	"github.com/false0brian/hometypemap/pkg/model"
	"github.com/false0brian/hometypemap/pkg/pins"
	"github.com/false0brian/hometypemap/pkg/testutil"
)

// fakeFetcher is a scriptable Fetcher. Commands run synchronously in
// tests, so plain fields are safe.
type fakeFetcher struct {
	pins      api.PinsResult
	pinsErr   error
	nearby    api.NearbyResult
	nearbyErr error
	detail    model.ComplexDetail
	detailErr error
	page      api.PortfolioPage
	pageErr   error
	createdID int64

	pinsCalls      int
	nearbyCalls    int
	portfolioCalls int
	updates        []api.PinWrite
	creates        []api.PinWrite
	deletes        []int64
	favorites      []int64
	quotes         []api.QuoteRequest
}

func (f *fakeFetcher) Pins(_ context.Context, _ model.Bounds, _ model.ResolvedFilters) (api.PinsResult, error) {
	f.pinsCalls++
	return f.pins, f.pinsErr
}

func (f *fakeFetcher) Nearby(_ context.Context, _, _, _ float64, _ model.ResolvedFilters) (api.NearbyResult, error) {
	f.nearbyCalls++
	return f.nearby, f.nearbyErr
}

func (f *fakeFetcher) ComplexDetail(_ context.Context, _ int64) (model.ComplexDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeFetcher) Portfolios(_ context.Context, _, _ int64, _ model.ResolvedFilters) (api.PortfolioPage, error) {
	f.portfolioCalls++
	return f.page, f.pageErr
}

func (f *fakeFetcher) Favorite(_ context.Context, portfolioID int64) error {
	f.favorites = append(f.favorites, portfolioID)
	return nil
}

func (f *fakeFetcher) Quote(_ context.Context, req api.QuoteRequest) (api.QuoteResult, error) {
	f.quotes = append(f.quotes, req)
	return api.QuoteResult{}, nil
}

func (f *fakeFetcher) CreatePin(_ context.Context, w api.PinWrite) (model.FloorPlanPin, error) {
	f.creates = append(f.creates, w)
	id := f.createdID
	if id == 0 {
		id = 9000 + int64(len(f.creates))
	}
	return model.FloorPlanPin{PinID: id, X: w.X, Y: w.Y, Title: w.Title}, nil
}

func (f *fakeFetcher) UpdatePin(_ context.Context, pinID int64, x, y float64) error {
	f.updates = append(f.updates, api.PinWrite{PortfolioID: pinID, X: x, Y: y})
	return nil
}

func (f *fakeFetcher) DeletePin(_ context.Context, pinID int64) error {
	f.deletes = append(f.deletes, pinID)
	return nil
}

func (f *fakeFetcher) Authenticated() bool { return true }

func newTestModel(f Fetcher, loc geoloc.Locator) Model {
	cfg := config.DefaultConfig()
	cfg.Fetch.SettleMs = 1
	return NewModel(Options{Fetcher: f, Locator: loc, Config: cfg})
}

func apply(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialFetchCommits(t *testing.T) {
	f := &fakeFetcher{pins: api.PinsResult{Complexes: testutil.Complexes(2, 37.56, 126.97)}}
	m := newTestModel(f, nil)

	msg := m.Init()()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m, _ = apply(t, m, c())
		}
	} else {
		m, _ = apply(t, m, msg)
	}
	if len(m.complexes) != 2 {
		t.Fatalf("initial fetch result not committed: %d complexes", len(m.complexes))
	}
}

func TestStaleSettleTickIsIgnored(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	m, _ = apply(t, m, keyRunes("l"))
	firstSeq := m.settleSeq
	m, _ = apply(t, m, keyRunes("l")) // supersedes the pending tick

	m, cmd := apply(t, m, settleTickMsg{seq: firstSeq})
	if cmd != nil {
		t.Fatal("stale settle tick must not issue a fetch")
	}
	if f.pinsCalls != 0 {
		t.Fatalf("expected no fetch, got %d", f.pinsCalls)
	}

	// the live tick does fetch
	_, cmd = apply(t, m, settleTickMsg{seq: m.settleSeq})
	if cmd == nil {
		t.Fatal("current settle tick must issue a fetch")
	}
	cmd()
	if f.pinsCalls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", f.pinsCalls)
	}
}

func TestStaleSpatialResultDiscarded(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	// first navigation burst: fetch issued but result delayed
	m, _ = apply(t, m, keyRunes("l"))
	m, cmd1 := apply(t, m, settleTickMsg{seq: m.settleSeq})

	// second burst supersedes it before the first result lands
	m, _ = apply(t, m, keyRunes("l"))
	m, cmd2 := apply(t, m, settleTickMsg{seq: m.settleSeq})

	f.pins = api.PinsResult{Complexes: testutil.Complexes(5, 37.56, 126.97)}
	fresh := cmd2()
	f.pins = api.PinsResult{Complexes: testutil.Complexes(3, 37.56, 126.97)}
	stale := cmd1()

	m, _ = apply(t, m, fresh)
	if len(m.complexes) != 5 {
		t.Fatalf("fresh result not committed: %d complexes", len(m.complexes))
	}
	m, _ = apply(t, m, stale)
	if len(m.complexes) != 5 {
		t.Fatalf("stale result clobbered fresh state: %d complexes", len(m.complexes))
	}
}

func TestStaleDetailResultDiscarded(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	complexes := testutil.Complexes(2, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	staleGen := m.detailGen

	// a second selection supersedes the first detail fetch
	next, _ = m.selectComplex(&complexes[1])
	m = next.(Model)

	m, cmd := apply(t, m, complexDetailMsg{gen: staleGen, detail: testutil.Detail(1, 2)})
	if m.detail != nil || m.sel.UnitType != nil {
		t.Fatal("superseded detail result must be discarded")
	}
	if !m.detailLoading {
		t.Fatal("the live fetch is still pending")
	}
	if cmd != nil {
		t.Fatal("a discarded detail must not trigger a portfolio fetch")
	}

	m, _ = apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(2, 1)})
	if m.detail == nil || m.detail.ID != 2 {
		t.Fatalf("live detail result not committed: %+v", m.detail)
	}
}

func TestStalePortfolioResultDiscarded(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	complexes := testutil.Complexes(1, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	m, _ = apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(1, 2)})
	staleGen := m.portfolioGen

	// switching unit types orphans the fetch for the previous one
	m, _ = apply(t, m, keyRunes("2"))

	m, _ = apply(t, m, portfoliosMsg{gen: staleGen, page: api.PortfolioPage{Items: testutil.Portfolios(4)}})
	if len(m.portfolios) != 0 {
		t.Fatal("superseded portfolio result must be discarded")
	}
	if !m.portfolioLoading {
		t.Fatal("the live fetch is still pending")
	}

	m, _ = apply(t, m, portfoliosMsg{gen: m.portfolioGen, page: api.PortfolioPage{Items: testutil.Portfolios(2)}})
	if len(m.portfolios) != 2 {
		t.Fatalf("live portfolio result not committed: %d", len(m.portfolios))
	}
	testutil.AssertConsistent(t, m.sel)
}

func TestNearbySwitchDiscardsBoundsResult(t *testing.T) {
	dist := 250.0
	f := &fakeFetcher{
		nearby: api.NearbyResult{
			RadiusM: 1500,
			Items: []model.ComplexPin{{
				ID: 1, Name: "Near", Lat: 37.56, Lng: 126.97, DistanceM: &dist,
			}},
		},
	}
	loc := geoloc.Fixed{Pos: geoloc.Position{Lat: 37.56, Lng: 126.97}}
	m := newTestModel(f, loc)

	// bounds fetch in flight
	m, _ = apply(t, m, keyRunes("l"))
	m, boundsCmd := apply(t, m, settleTickMsg{seq: m.settleSeq})
	f.pins = api.PinsResult{Complexes: testutil.Complexes(4, 37.56, 126.97)}
	boundsResult := boundsCmd()

	// switch to nearby before it lands
	m, locCmd := apply(t, m, keyRunes("n"))
	m, nearbyCmd := apply(t, m, locCmd())
	if m.vp.Mode() != model.ModeNearby {
		t.Fatal("expected nearby mode after successful geolocation")
	}
	if len(m.complexes) != 0 {
		t.Fatal("mode switch must clear the rendered result")
	}

	m, _ = apply(t, m, boundsResult)
	if len(m.complexes) != 0 {
		t.Fatal("bounds result leaked into nearby mode")
	}

	m, _ = apply(t, m, nearbyCmd())
	if len(m.complexes) != 1 {
		t.Fatalf("nearby result not committed: %d", len(m.complexes))
	}
	if got := m.markers[0].badge; got != "3" {
		t.Fatalf("distance badge for 250m = %q, want \"3\"", got)
	}
}

func TestGeolocationDeniedAbortsSwitch(t *testing.T) {
	f := &fakeFetcher{}
	loc := geoloc.Fixed{Err: geoloc.ErrPermissionDenied}
	m := newTestModel(f, loc)

	m, locCmd := apply(t, m, keyRunes("n"))
	m, _ = apply(t, m, locCmd())

	if m.vp.Mode() != model.ModeBounds {
		t.Fatal("denied geolocation must not switch modes")
	}
	if !m.statusIsError {
		t.Fatal("denial should surface on the status line")
	}
	if f.nearbyCalls != 0 {
		t.Fatal("no nearby fetch should be issued after denial")
	}
}

func TestSelectComplexResetsDescendants(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	complexes := testutil.Complexes(2, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	m, _ = apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(1, 2)})

	m, _ = apply(t, m, keyRunes("1"))
	m, _ = apply(t, m, portfoliosMsg{gen: m.portfolioGen, page: api.PortfolioPage{Items: testutil.Portfolios(4)}})
	next, _ = m.selectPortfolio(2)
	m = next.(Model)
	if m.sel.Portfolio == nil {
		t.Fatal("setup: portfolio not selected")
	}
	testutil.AssertConsistent(t, m.sel)

	// re-selecting a complex (even a different one) resets everything below
	next, _ = m.selectComplex(&complexes[1])
	m = next.(Model)
	testutil.AssertCleared(t, m.sel)
	if m.detail != nil || len(m.portfolios) != 0 || len(m.placed) != 0 {
		t.Fatal("detail and dependent data must be dropped on complex re-selection")
	}
}

func TestFirstUnitTypeAutoSelected(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	complexes := testutil.Complexes(1, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	m, cmd := apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(1, 3)})

	if m.sel.UnitType == nil || m.sel.UnitType.ID != testutil.Detail(1, 3).UnitTypes[0].ID {
		t.Fatal("the first unit type should be selected automatically")
	}
	if cmd == nil {
		t.Fatal("auto-selection should fetch portfolios")
	}
}

func TestNoUnitTypesIsEmptyStateNotError(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	complexes := testutil.Complexes(1, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	m, cmd := apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(1, 0)})

	if !m.noUnitTypes {
		t.Fatal("expected the explicit no-types state")
	}
	if m.statusIsError {
		t.Fatal("missing unit types is not an error")
	}
	if cmd != nil {
		t.Fatal("no portfolio fetch without a unit type")
	}
}

func TestPortfolioRefreshClearsVanishedSelection(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	complexes := testutil.Complexes(1, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	m, _ = apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(1, 2)})
	m, _ = apply(t, m, keyRunes("1"))
	m, _ = apply(t, m, portfoliosMsg{gen: m.portfolioGen, page: api.PortfolioPage{Items: testutil.Portfolios(4)}})
	next, _ = m.selectPortfolio(4)
	m = next.(Model)

	// refreshed list no longer contains portfolio 4
	m.portfolioGen++
	m, _ = apply(t, m, portfoliosMsg{gen: m.portfolioGen, page: api.PortfolioPage{Items: testutil.Portfolios(2)}})
	if m.sel.Portfolio != nil || m.sel.PinID != nil {
		t.Fatalf("selection must not point at a vanished portfolio: %+v", m.sel)
	}
	testutil.AssertConsistent(t, m.sel)
}

func TestClusterActivationZoomClamped(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)
	m.vp.zoom = m.vp.maxZoom - 1

	mk := marker{kind: markerCluster, lat: 37.5, lng: 127.0, clusterKey: "c0"}
	next, cmd := m.activateMarker(mk)
	m = next.(Model)

	if m.vp.zoom != m.vp.maxZoom {
		t.Fatalf("zoom = %d, want clamped to %d", m.vp.zoom, m.vp.maxZoom)
	}
	if m.vp.centerLat != 37.5 || m.vp.centerLng != 127.0 {
		t.Fatal("cluster activation must recenter on the cluster")
	}
	if cmd == nil {
		t.Fatal("drill-down is a navigation event and must schedule a fetch")
	}
}

func TestAutoFilterRetriggersFetches(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)
	m.fav = model.FavoritePrefs{VendorIDs: []int64{101, 102}}

	complexes := testutil.Complexes(1, 37.56, 126.97)
	next, _ := m.selectComplex(&complexes[0])
	m = next.(Model)
	m, _ = apply(t, m, complexDetailMsg{gen: m.detailGen, detail: testutil.Detail(1, 2)})
	m, _ = apply(t, m, keyRunes("1"))
	genBefore := m.portfolioGen

	m, cmd := apply(t, m, keyRunes("a"))
	if m.resolved.EffectiveVendorID == nil || *m.resolved.EffectiveVendorID != 101 {
		t.Fatalf("first favorite vendor should become effective, got %v", m.resolved.EffectiveVendorID)
	}
	if m.portfolioGen != genBefore+1 {
		t.Fatal("filter change must re-trigger the portfolio fetch")
	}
	if cmd == nil {
		t.Fatal("filter change must issue fetch commands")
	}

	// toggling back with identical resolution is a no-op fetch-wise
	m, _ = apply(t, m, keyRunes("a"))
	gen := m.portfolioGen
	m, _ = apply(t, m, keyRunes("a"))
	m, _ = apply(t, m, keyRunes("a"))
	if m.portfolioGen != gen+2 {
		t.Fatalf("each real resolution change bumps the generation once, got %d -> %d", gen, m.portfolioGen)
	}
}

func TestDragMovePersistsAndKeepsPositionOnFailure(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)
	m.operator = true
	m.portfolios = testutil.Portfolios(4) // portfolio 1 owns pin 10 at (20,30)
	m.rebuildPins()

	r := m.planInner()
	sx, sy := geo.NormalizedToScreen(20, 30, r)
	m, _ = apply(t, m, tea.MouseMsg{X: int(sx), Y: int(sy), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if _, dragging := m.editor.Dragging(); !dragging {
		t.Fatal("press on a pin should start a drag")
	}

	tx, ty := geo.NormalizedToScreen(60, 70, r)
	m, _ = apply(t, m, tea.MouseMsg{X: int(tx), Y: int(ty), Action: tea.MouseActionMotion})
	m, cmd := apply(t, m, tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if cmd == nil {
		t.Fatal("release after motion must persist the pin")
	}
	cmd()
	if len(f.updates) != 1 || f.updates[0].PortfolioID != 10 {
		t.Fatalf("expected one UpdatePin for pin 10, got %+v", f.updates)
	}

	moved := pins.FindByPin(m.placed, 10)
	if moved == nil || moved.X == 20 {
		t.Fatal("pin position should be applied optimistically")
	}
	wantX, wantY := moved.X, moved.Y

	// a failed persist keeps the optimistic position
	m, _ = apply(t, m, pinSavedMsg{pinID: 10, x: wantX, y: wantY, err: errors.New("boom")})
	after := pins.FindByPin(m.placed, 10)
	if after.X != wantX || after.Y != wantY {
		t.Fatal("failed persist must not roll the position back")
	}
	if !m.statusIsError {
		t.Fatal("persist failure should surface on the status line")
	}
}

func TestSyntheticPinDragCreatesRealPin(t *testing.T) {
	f := &fakeFetcher{createdID: 777}
	m := newTestModel(f, nil)
	m.operator = true
	m.portfolios = testutil.Portfolios(4)
	m.rebuildPins()

	// portfolio 2 has no explicit pins; its synthetic pin id is -2
	synth := pins.FindByPin(m.placed, -2)
	if synth == nil || !synth.Synthetic {
		t.Fatal("setup: synthetic pin for portfolio 2 missing")
	}

	r := m.planInner()
	sx, sy := geo.NormalizedToScreen(synth.X, synth.Y, r)
	m, _ = apply(t, m, tea.MouseMsg{X: int(sx), Y: int(sy), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	tx, ty := geo.NormalizedToScreen(50, 50, r)
	m, _ = apply(t, m, tea.MouseMsg{X: int(tx), Y: int(ty), Action: tea.MouseActionMotion})
	m, cmd := apply(t, m, tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if cmd == nil {
		t.Fatal("releasing a moved synthetic pin must create a real pin")
	}

	m, _ = apply(t, m, cmd())
	if len(f.creates) != 1 || f.creates[0].PortfolioID != 2 {
		t.Fatalf("expected CreatePin for portfolio 2, got %+v", f.creates)
	}
	if pins.FindByPin(m.placed, 777) == nil {
		t.Fatal("created pin should replace the synthetic one in the pin layer")
	}
	if pins.FindByPin(m.placed, -2) != nil {
		t.Fatal("synthetic pin should disappear once the real pin exists")
	}
}

func TestQuoteAndFavoriteNeedSelection(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestModel(f, nil)

	m, cmd := apply(t, m, keyRunes("f"))
	if cmd != nil || !m.statusIsError {
		t.Fatal("favorite without a selected portfolio must be rejected locally")
	}
	m, cmd = apply(t, m, keyRunes("r"))
	if cmd != nil || !m.statusIsError {
		t.Fatal("quote without a selected portfolio must be rejected locally")
	}
}
