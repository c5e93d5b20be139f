// Package model defines the domain types shared across the map view, the
// card list, and the floor-plan pin layer, plus the pure state that keeps
// those three views consistent (selection chain, filter resolution).
package model

// Mode selects which fetch pipeline drives the map. The two modes are
// mutually exclusive: switching modes invalidates any in-flight fetch of
// the previous mode.
type Mode int

const (
	// ModeBounds fetches by the current viewport rectangle.
	ModeBounds Mode = iota
	// ModeNearby fetches by geolocation center and radius.
	ModeNearby
)

func (m Mode) String() string {
	if m == ModeNearby {
		return "nearby"
	}
	return "bounds"
}

// Bounds is a viewport rectangle plus a discrete zoom level. It is
// produced by the map surface, mutated only by user navigation, and
// consumed read-only by everything downstream.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
	Zoom  int     `json:"zoom"`
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (lat, lng float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// Contains reports whether the point lies inside the rectangle.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

// ClusterPin is a server-aggregated group of complexes. It has no
// identity across fetch cycles; the key is only unique within one result.
type ClusterPin struct {
	Key       string  `json:"key"`
	CenterLat float64 `json:"centerLat"`
	CenterLng float64 `json:"centerLng"`
	Count     int     `json:"count"`
}

// ComplexPin is a single building complex marker. DistanceM is populated
// only by nearby-mode responses.
type ComplexPin struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	PortfolioCount int      `json:"portfolioCount"`
	DistanceM      *float64 `json:"distanceM,omitempty"`
}

// ComplexDetail is loaded on demand when a complex is selected and owns
// its unit types. It is discarded on re-selection, never cached across
// complexes.
type ComplexDetail struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	UnitTypes []UnitType `json:"unitTypes"`
}

// UnitType belongs to exactly one ComplexDetail.
type UnitType struct {
	ID             int64   `json:"id"`
	AreaM2         float64 `json:"areaM2"`
	TypeCode       string  `json:"typeCode,omitempty"`
	FloorPlanImage string  `json:"floorPlanImageUrl,omitempty"`
	PortfolioCount int     `json:"portfolioCount"`
}

// PortfolioCard is the unit of display in the card list. A card with no
// explicit floor-plan pins is treated as having exactly one synthetic
// pin, so every displayed portfolio is placeable.
type PortfolioCard struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	WorkScope     string         `json:"workScope"`
	Style         string         `json:"style"`
	BudgetMin     *int64         `json:"budgetMin,omitempty"`
	BudgetMax     *int64         `json:"budgetMax,omitempty"`
	DurationDays  *int           `json:"durationDays,omitempty"`
	VendorID      *int64         `json:"vendorId,omitempty"`
	VendorName    string         `json:"vendorName,omitempty"`
	BeforeImages  []string       `json:"beforeImages"`
	AfterImages   []string       `json:"afterImages"`
	FloorPlanPins []FloorPlanPin `json:"floorPlanPins,omitempty"`
}

// FloorPlanPin is a point annotation on a floor-plan image. X and Y are
// percentages (0-100) of the image's rendered width and height.
type FloorPlanPin struct {
	PinID        int64    `json:"pinId"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Title        string   `json:"title,omitempty"`
	BeforeImages []string `json:"beforeImages"`
	AfterImages  []string `json:"afterImages"`
}

// GallerySide selects which half of a before/after gallery is shown.
type GallerySide int

const (
	SideAfter GallerySide = iota
	SideBefore
)

func (s GallerySide) String() string {
	if s == SideBefore {
		return "before"
	}
	return "after"
}
