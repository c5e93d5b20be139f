package ui

import (
	"math"

	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/model"
)

// mapViewport owns the current viewport: a center plus a discrete zoom
// level in bounds mode, or a geolocated center plus radius in nearby
// mode. Bounds are recomputed synchronously on every navigation event so
// they always reflect the visual state; only the derived fetch is
// debounced, elsewhere.
type mapViewport struct {
	centerLat float64
	centerLng float64
	zoom      int
	minZoom   int
	maxZoom   int

	mode model.Mode

	// nearby-mode parameters; meaningful only while mode == ModeNearby.
	nearbyLat float64
	nearbyLng float64
	radiusM   float64
}

// panStep is the fraction of the current span one pan keystroke moves.
const panStep = 0.2

func newMapViewport(lat, lng float64, zoom, minZoom, maxZoom int, radiusM float64) mapViewport {
	return mapViewport{
		centerLat: lat,
		centerLng: lng,
		zoom:      geo.ClampInt(zoom, minZoom, maxZoom),
		minZoom:   minZoom,
		maxZoom:   maxZoom,
		radiusM:   radiusM,
		mode:      model.ModeBounds,
	}
}

// spans derives the viewport extents from the zoom level. Latitude span
// is squashed to roughly match a terminal cell's aspect ratio.
func (v mapViewport) spans() (latSpan, lngSpan float64) {
	lngSpan = 360 / math.Exp2(float64(v.zoom))
	latSpan = lngSpan * 0.62
	return latSpan, lngSpan
}

// Bounds returns the current viewport rectangle.
func (v mapViewport) Bounds() model.Bounds {
	latSpan, lngSpan := v.spans()
	return model.Bounds{
		South: v.centerLat - latSpan/2,
		West:  v.centerLng - lngSpan/2,
		North: v.centerLat + latSpan/2,
		East:  v.centerLng + lngSpan/2,
		Zoom:  v.zoom,
	}
}

// Pan shifts the center by (dx, dy) pan steps.
func (v *mapViewport) Pan(dx, dy float64) {
	latSpan, lngSpan := v.spans()
	v.centerLng += dx * panStep * lngSpan
	v.centerLat += dy * panStep * latSpan
	v.centerLat = geo.Clamp(v.centerLat, -85, 85)
	v.centerLng = wrapLng(v.centerLng)
}

// ZoomBy changes the zoom level, clamped to the configured range.
// Returns true when the level actually changed.
func (v *mapViewport) ZoomBy(delta int) bool {
	z := geo.ClampInt(v.zoom+delta, v.minZoom, v.maxZoom)
	if z == v.zoom {
		return false
	}
	v.zoom = z
	return true
}

// RecenterTo moves the viewport center without changing zoom.
func (v *mapViewport) RecenterTo(lat, lng float64) {
	v.centerLat = geo.Clamp(lat, -85, 85)
	v.centerLng = wrapLng(lng)
}

// EnterNearby switches to nearby mode around the given position.
func (v *mapViewport) EnterNearby(lat, lng float64) {
	v.mode = model.ModeNearby
	v.nearbyLat = lat
	v.nearbyLng = lng
	v.RecenterTo(lat, lng)
}

// EnterBounds switches back to bounds mode.
func (v *mapViewport) EnterBounds() {
	v.mode = model.ModeBounds
}

// Mode returns the active fetch mode.
func (v mapViewport) Mode() model.Mode { return v.mode }

// Nearby returns the nearby-mode query parameters.
func (v mapViewport) Nearby() (lat, lng, radiusM float64) {
	return v.nearbyLat, v.nearbyLng, v.radiusM
}

// project maps a lat/lng inside the current bounds to a cell position on
// a width x height canvas. ok is false when the point is outside the
// viewport.
func (v mapViewport) project(lat, lng float64, width, height int) (col, row int, ok bool) {
	b := v.Bounds()
	if !b.Contains(lat, lng) || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	col = int((lng - b.West) / (b.East - b.West) * float64(width))
	row = int((b.North - lat) / (b.North - b.South) * float64(height))
	col = geo.ClampInt(col, 0, width-1)
	row = geo.ClampInt(row, 0, height-1)
	return col, row, true
}

// cellToLatLng is the inverse of project for the cell's center, used to
// recenter on a clicked map cell.
func (v mapViewport) cellToLatLng(col, row, width, height int) (lat, lng float64) {
	b := v.Bounds()
	if width <= 0 || height <= 0 {
		return v.centerLat, v.centerLng
	}
	lng = b.West + (float64(col)+0.5)/float64(width)*(b.East-b.West)
	lat = b.North - (float64(row)+0.5)/float64(height)*(b.North-b.South)
	return lat, lng
}

func wrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
