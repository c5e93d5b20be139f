package ui

import (
	"strconv"

	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/model"
)

// markerKind distinguishes the two marker shapes on the map canvas.
type markerKind int

const (
	markerCluster markerKind = iota
	markerComplex
)

// marker is one renderable map annotation. The marker set is rebuilt
// wholesale from the latest fetch result and the current selection; no
// marker survives across results, which rules out stale-marker bugs at
// the cost of rebuilding a few dozen values.
type marker struct {
	kind     markerKind
	lat      float64
	lng      float64
	badge    string
	label    string
	selected bool

	// cluster drill-down target
	clusterKey string
	// complex identity for activation
	complexID int64
	complex   *model.ComplexPin
}

// buildMarkers produces the marker set for the current mode, result, and
// selection. Clusters only appear in bounds mode; nearby mode renders
// distance badges instead of portfolio counts.
func buildMarkers(mode model.Mode, clusters []model.ClusterPin, complexes []model.ComplexPin, sel model.Selection) []marker {
	out := make([]marker, 0, len(clusters)+len(complexes))

	if mode == model.ModeBounds {
		for _, c := range clusters {
			out = append(out, marker{
				kind:       markerCluster,
				lat:        c.CenterLat,
				lng:        c.CenterLng,
				badge:      strconv.Itoa(c.Count),
				clusterKey: c.Key,
			})
		}
	}

	for i := range complexes {
		c := complexes[i]
		badge := strconv.Itoa(c.PortfolioCount)
		if mode == model.ModeNearby && c.DistanceM != nil {
			badge = geo.DistanceBadge(*c.DistanceM)
		}
		out = append(out, marker{
			kind:      markerComplex,
			lat:       c.Lat,
			lng:       c.Lng,
			badge:     badge,
			label:     c.Name,
			selected:  sel.Complex != nil && sel.Complex.ID == c.ID,
			complexID: c.ID,
			complex:   &complexes[i],
		})
	}

	return out
}
