package geo

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"below", -5, 0, 100, 0},
		{"above", 150, 0, 100, 100},
		{"inside", 42, 0, 100, 42},
		{"at-low-edge", 0, 0, 100, 0},
		{"at-high-edge", 100, 0, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestHaversineM(t *testing.T) {
	// Seoul City Hall to Gangnam Station is roughly 8.9km.
	d := HaversineM(37.5663, 126.9779, 37.4979, 127.0276)
	if d < 8000 || d > 10000 {
		t.Errorf("expected ~8.9km, got %.0fm", d)
	}
	if d := HaversineM(37.5, 127.0, 37.5, 127.0); d != 0 {
		t.Errorf("zero distance expected, got %v", d)
	}
}

func TestDistanceBadge(t *testing.T) {
	tests := []struct {
		distanceM float64
		want      string
	}{
		{0, "1"},
		{49, "1"},
		{51, "1"},
		{150, "2"},
		{249, "2"},
		{1000, "10"},
	}
	for _, tt := range tests {
		if got := DistanceBadge(tt.distanceM); got != tt.want {
			t.Errorf("DistanceBadge(%v) = %q, want %q", tt.distanceM, got, tt.want)
		}
	}
}

func TestSyntheticPinXYDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.Int64().Draw(t, "id")
		x1, y1 := SyntheticPinXY(id)
		x2, y2 := SyntheticPinXY(id)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("unstable coordinates for id %d: (%v,%v) vs (%v,%v)", id, x1, y1, x2, y2)
		}
		if x1 < 0 || x1 > 100 || y1 < 0 || y1 > 100 {
			t.Fatalf("coordinates out of range for id %d: (%v,%v)", id, x1, y1)
		}
	})
}

func TestSyntheticPinXYSpreads(t *testing.T) {
	// Consecutive ids must not all stack on the same spot.
	seen := make(map[[2]float64]bool)
	for id := int64(1); id <= 20; id++ {
		x, y := SyntheticPinXY(id)
		seen[[2]float64{x, y}] = true
	}
	if len(seen) < 15 {
		t.Errorf("expected at least 15 distinct positions out of 20 ids, got %d", len(seen))
	}
}

func TestScreenToNormalizedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := Rect{
			Left:   rapid.Float64Range(-500, 500).Draw(t, "left"),
			Top:    rapid.Float64Range(-500, 500).Draw(t, "top"),
			Width:  rapid.Float64Range(1, 4000).Draw(t, "width"),
			Height: rapid.Float64Range(1, 4000).Draw(t, "height"),
		}
		x := rapid.Float64Range(0, 100).Draw(t, "x")
		y := rapid.Float64Range(0, 100).Draw(t, "y")

		px, py := NormalizedToScreen(x, y, r)
		gx, gy := ScreenToNormalized(px, py, r)
		if math.Abs(gx-x) > 1e-9 || math.Abs(gy-y) > 1e-9 {
			t.Fatalf("round trip drifted: (%v,%v) -> (%v,%v)", x, y, gx, gy)
		}
	})
}

func TestScreenToNormalizedClamps(t *testing.T) {
	r := Rect{Left: 10, Top: 10, Width: 100, Height: 50}
	x, y := ScreenToNormalized(0, 0, r)
	if x != 0 || y != 0 {
		t.Errorf("pointer above-left of surface should clamp to (0,0), got (%v,%v)", x, y)
	}
	x, y = ScreenToNormalized(1000, 1000, r)
	if x != 100 || y != 100 {
		t.Errorf("pointer below-right of surface should clamp to (100,100), got (%v,%v)", x, y)
	}
}

func TestScreenToNormalizedDegenerateRect(t *testing.T) {
	x, y := ScreenToNormalized(50, 50, Rect{})
	if x != 0 || y != 0 {
		t.Errorf("degenerate rect should map to origin, got (%v,%v)", x, y)
	}
}
