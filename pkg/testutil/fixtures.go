// Package testutil provides deterministic domain fixtures and assertion
// helpers shared by the package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/false0brian/hometypemap/pkg/model"
)

// Complexes generates n complexes spread around a center point. IDs start
// at 1 and positions are deterministic.
func Complexes(n int, centerLat, centerLng float64) []model.ComplexPin {
	out := make([]model.ComplexPin, n)
	for i := range out {
		id := int64(i + 1)
		out[i] = model.ComplexPin{
			ID:             id,
			Name:           fmt.Sprintf("Complex %d", id),
			Lat:            centerLat + float64(i%5)*0.001,
			Lng:            centerLng + float64(i%7)*0.001,
			PortfolioCount: i + 1,
		}
	}
	return out
}

// Clusters generates n cluster pins.
func Clusters(n int, centerLat, centerLng float64) []model.ClusterPin {
	out := make([]model.ClusterPin, n)
	for i := range out {
		out[i] = model.ClusterPin{
			Key:       fmt.Sprintf("c%d", i),
			CenterLat: centerLat + float64(i)*0.01,
			CenterLng: centerLng + float64(i)*0.01,
			Count:     (i + 1) * 3,
		}
	}
	return out
}

// Detail generates a complex detail with the given number of unit types.
func Detail(complexID int64, unitTypes int) model.ComplexDetail {
	d := model.ComplexDetail{
		ID:      complexID,
		Name:    fmt.Sprintf("Complex %d", complexID),
		Address: "1 Example-ro",
	}
	for i := 0; i < unitTypes; i++ {
		d.UnitTypes = append(d.UnitTypes, model.UnitType{
			ID:             complexID*100 + int64(i+1),
			AreaM2:         59 + float64(i)*25,
			TypeCode:       fmt.Sprintf("%dA", 59+i*25),
			PortfolioCount: i + 2,
		})
	}
	return d
}

// Portfolios generates n portfolio cards. Every third card carries an
// explicit floor-plan pin; the rest rely on synthetic placement.
func Portfolios(n int) []model.PortfolioCard {
	out := make([]model.PortfolioCard, n)
	for i := range out {
		id := int64(i + 1)
		vendor := int64(100 + i%3)
		out[i] = model.PortfolioCard{
			ID:         id,
			Title:      fmt.Sprintf("Renovation %d", id),
			WorkScope:  "full",
			Style:      "modern",
			VendorID:   &vendor,
			VendorName: fmt.Sprintf("Vendor %d", vendor),
		}
		if i%3 == 0 {
			out[i].FloorPlanPins = []model.FloorPlanPin{{
				PinID: id * 10,
				X:     float64(20 + i),
				Y:     float64(30 + i),
				Title: fmt.Sprintf("pin %d", id),
			}}
		}
	}
	return out
}

// AssertConsistent fails the test when the selection chain violates its
// containment invariant.
func AssertConsistent(t *testing.T, sel model.Selection) {
	t.Helper()
	if !sel.Consistent() {
		t.Fatalf("selection chain inconsistent: %+v", sel)
	}
}

// AssertCleared fails the test unless every selection level below the
// complex is empty.
func AssertCleared(t *testing.T, sel model.Selection) {
	t.Helper()
	if sel.UnitType != nil || sel.Portfolio != nil || sel.PinID != nil {
		t.Fatalf("expected descendants cleared, got %+v", sel)
	}
}
