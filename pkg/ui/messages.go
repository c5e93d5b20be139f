// Package ui provides the terminal user interface for htm.
//
// This file defines the message vocabulary of the event loop. Every
// asynchronous operation (viewport fetch, detail fetch, portfolio fetch,
// geolocation, pin writes) re-enters Update as one of these messages,
// carrying the generation it was issued under so stale results can be
// discarded instead of clobbering newer state.
package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/false0brian/hometypemap/pkg/api"
	"github.com/false0brian/hometypemap/pkg/geoloc"
	"github.com/false0brian/hometypemap/pkg/model"
	"github.com/false0brian/hometypemap/pkg/watcher"
)

// settleTickMsg fires after the viewport settle delay. Seq identifies the
// navigation burst it belongs to; a tick with a stale seq is dropped.
type settleTickMsg struct {
	seq int
}

// pinsFetchedMsg carries a bounds-mode result.
type pinsFetchedMsg struct {
	gen    int
	result api.PinsResult
	err    error
}

// nearbyFetchedMsg carries a nearby-mode result.
type nearbyFetchedMsg struct {
	gen    int
	result api.NearbyResult
	err    error
}

// complexDetailMsg carries a complex-detail result.
type complexDetailMsg struct {
	gen    int
	detail model.ComplexDetail
	err    error
}

// portfoliosMsg carries a portfolio page.
type portfoliosMsg struct {
	gen  int
	page api.PortfolioPage
	err  error
}

// geolocatedMsg carries the one-shot geolocation outcome.
type geolocatedMsg struct {
	pos Position
	err error
}

// Position aliases the locator result to keep ui signatures local.
type Position = geoloc.Position

// pinSavedMsg reports a pin position persist (drag release).
type pinSavedMsg struct {
	pinID int64
	x, y  float64
	err   error
}

// pinCreatedMsg reports a pin creation (form submit, or first drag of a
// synthetic pin).
type pinCreatedMsg struct {
	portfolioID int64
	pin         model.FloorPlanPin
	err         error
}

// pinDeletedMsg reports a pin deletion.
type pinDeletedMsg struct {
	pinID int64
	err   error
}

// favoriteSavedMsg reports a favorite write. soft is true for the
// idempotent already-exists case.
type favoriteSavedMsg struct {
	portfolioID int64
	soft        bool
	err         error
}

// quoteSentMsg reports a quote-request submission.
type quoteSentMsg struct {
	createdAt time.Time
	err       error
}

// pulseTickMsg ends a highlight pulse. Seq guards against a pulse timer
// firing after a newer pulse restarted it.
type pulseTickMsg struct {
	seq int
}

// configChangedMsg is sent when the config file changes on disk.
type configChangedMsg struct{}

// Fetcher is the collaborator surface the engine reads from. *api.Client
// implements it; tests substitute scriptable fakes.
type Fetcher interface {
	Pins(ctx context.Context, b model.Bounds, f model.ResolvedFilters) (api.PinsResult, error)
	Nearby(ctx context.Context, lat, lng, radiusM float64, f model.ResolvedFilters) (api.NearbyResult, error)
	ComplexDetail(ctx context.Context, complexID int64) (model.ComplexDetail, error)
	Portfolios(ctx context.Context, complexID, unitTypeID int64, f model.ResolvedFilters) (api.PortfolioPage, error)
	Favorite(ctx context.Context, portfolioID int64) error
	Quote(ctx context.Context, req api.QuoteRequest) (api.QuoteResult, error)
	CreatePin(ctx context.Context, w api.PinWrite) (model.FloorPlanPin, error)
	UpdatePin(ctx context.Context, pinID int64, x, y float64) error
	DeletePin(ctx context.Context, pinID int64) error
	Authenticated() bool
}

// Prefs is the durable preference surface the engine consults.
// *prefstore.Store implements it.
type Prefs interface {
	FavoritePrefs() (model.FavoritePrefs, error)
	GallerySide(portfolioID int64) (model.GallerySide, bool, error)
	SetGallerySide(portfolioID int64, side model.GallerySide) error
	SetAutoFilter(on bool) error
}

func settleTickCmd(seq int, settle time.Duration) tea.Cmd {
	return tea.Tick(settle, func(time.Time) tea.Msg {
		return settleTickMsg{seq: seq}
	})
}

func pulseTickCmd(seq int) tea.Cmd {
	return tea.Tick(900*time.Millisecond, func(time.Time) tea.Msg {
		return pulseTickMsg{seq: seq}
	})
}

func fetchPinsCmd(f Fetcher, gen int, b model.Bounds, flt model.ResolvedFilters) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Pins(context.Background(), b, flt)
		return pinsFetchedMsg{gen: gen, result: res, err: err}
	}
}

func fetchNearbyCmd(f Fetcher, gen int, lat, lng, radiusM float64, flt model.ResolvedFilters) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Nearby(context.Background(), lat, lng, radiusM, flt)
		return nearbyFetchedMsg{gen: gen, result: res, err: err}
	}
}

func fetchComplexDetailCmd(f Fetcher, gen int, complexID int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := f.ComplexDetail(context.Background(), complexID)
		return complexDetailMsg{gen: gen, detail: detail, err: err}
	}
}

func fetchPortfoliosCmd(f Fetcher, gen int, complexID, unitTypeID int64, flt model.ResolvedFilters) tea.Cmd {
	return func() tea.Msg {
		page, err := f.Portfolios(context.Background(), complexID, unitTypeID, flt)
		return portfoliosMsg{gen: gen, page: page, err: err}
	}
}

func geolocateCmd(l geoloc.Locator, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		pos, err := l.Locate(ctx)
		return geolocatedMsg{pos: pos, err: err}
	}
}

func savePinCmd(f Fetcher, pinID int64, x, y float64) tea.Cmd {
	return func() tea.Msg {
		err := f.UpdatePin(context.Background(), pinID, x, y)
		return pinSavedMsg{pinID: pinID, x: x, y: y, err: err}
	}
}

func createPinCmd(f Fetcher, w api.PinWrite) tea.Cmd {
	return func() tea.Msg {
		pin, err := f.CreatePin(context.Background(), w)
		return pinCreatedMsg{portfolioID: w.PortfolioID, pin: pin, err: err}
	}
}

func deletePinCmd(f Fetcher, pinID int64) tea.Cmd {
	return func() tea.Msg {
		err := f.DeletePin(context.Background(), pinID)
		return pinDeletedMsg{pinID: pinID, err: err}
	}
}

func favoriteCmd(f Fetcher, portfolioID int64) tea.Cmd {
	return func() tea.Msg {
		err := f.Favorite(context.Background(), portfolioID)
		if errors.Is(err, api.ErrAlreadyExists) {
			return favoriteSavedMsg{portfolioID: portfolioID, soft: true}
		}
		return favoriteSavedMsg{portfolioID: portfolioID, err: err}
	}
}

func quoteCmd(f Fetcher, req api.QuoteRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Quote(context.Background(), req)
		return quoteSentMsg{createdAt: res.CreatedAt, err: err}
	}
}

// watchConfigCmd parks on the watcher and re-arms itself after each event
// from Update.
func watchConfigCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return configChangedMsg{}
	}
}
