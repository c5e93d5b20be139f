// Package pins maps portfolios onto floor-plan images: it produces the
// placeable pin set for a unit type (with synthetic fallbacks so every
// portfolio is placeable) and runs the operator's drag-to-place editor.
package pins

import (
	"fmt"

	"github.com/false0brian/hometypemap/pkg/geo"
	"github.com/false0brian/hometypemap/pkg/model"
)

// galleryMin is the number of images a padded or fully generated gallery
// side carries. Explicit multi-image lists are never padded.
const galleryMin = 3

// PlacedPin is a pin ready for rendering: resolved coordinates, resolved
// galleries, and the portfolio it belongs to.
type PlacedPin struct {
	PinID        int64
	PortfolioID  int64
	X            float64
	Y            float64
	Title        string
	Synthetic    bool
	BeforeImages []string
	AfterImages  []string
}

// Override pins a portfolio's synthetic coordinates to an explicit spot
// without persisting a real pin.
type Override struct {
	X float64
	Y float64
}

// MapPins flattens a portfolio list into the pin set for the floor plan.
// Portfolios with explicit pins contribute each of them; every other
// portfolio contributes exactly one synthetic pin, so the pin layer never
// drops a card.
func MapPins(portfolios []model.PortfolioCard, overrides map[int64]Override) []PlacedPin {
	var out []PlacedPin
	for i := range portfolios {
		p := &portfolios[i]
		if len(p.FloorPlanPins) > 0 {
			for _, fp := range p.FloorPlanPins {
				out = append(out, PlacedPin{
					PinID:        fp.PinID,
					PortfolioID:  p.ID,
					X:            geo.Clamp(fp.X, 0, 100),
					Y:            geo.Clamp(fp.Y, 0, 100),
					Title:        fp.Title,
					BeforeImages: ResolveGallery(p.ID, model.SideBefore, fp.BeforeImages),
					AfterImages:  ResolveGallery(p.ID, model.SideAfter, fp.AfterImages),
				})
			}
			continue
		}

		x, y := geo.SyntheticPinXY(p.ID)
		if ov, ok := overrides[p.ID]; ok {
			x, y = geo.Clamp(ov.X, 0, 100), geo.Clamp(ov.Y, 0, 100)
		}
		out = append(out, PlacedPin{
			// Synthetic pins have no server identity; the negated
			// portfolio id keeps them distinct from real pin ids.
			PinID:        -p.ID,
			PortfolioID:  p.ID,
			X:            x,
			Y:            y,
			Title:        p.Title,
			Synthetic:    true,
			BeforeImages: ResolveGallery(p.ID, model.SideBefore, p.BeforeImages),
			AfterImages:  ResolveGallery(p.ID, model.SideAfter, p.AfterImages),
		})
	}
	return out
}

// ResolveGallery applies the fallback chain for one gallery side:
// explicit multi-image list as-is, a single explicit URL padded with
// generated placeholders, or a fully generated placeholder set. Generated
// URLs are deterministic per portfolio id and side so tests and offline
// demos are reproducible.
func ResolveGallery(portfolioID int64, side model.GallerySide, explicit []string) []string {
	if len(explicit) >= 2 {
		return explicit
	}
	out := make([]string, 0, galleryMin)
	out = append(out, explicit...)
	for i := len(out); i < galleryMin; i++ {
		out = append(out, PlaceholderURL(portfolioID, side, i))
	}
	return out
}

// PlaceholderURL generates the deterministic stand-in image URL for a
// portfolio gallery slot.
func PlaceholderURL(portfolioID int64, side model.GallerySide, index int) string {
	return fmt.Sprintf("https://placehold.local/p/%d/%s/%d.jpg", portfolioID, side, index)
}

// GallerySideFor picks which gallery side to show when a pin is selected:
// the side most recently chosen for that portfolio if remembered, else
// "after" when an after image exists, else "before".
func GallerySideFor(remembered *model.GallerySide, hasAfter, hasBefore bool) model.GallerySide {
	if remembered != nil {
		return *remembered
	}
	if hasAfter {
		return model.SideAfter
	}
	if hasBefore {
		return model.SideBefore
	}
	return model.SideAfter
}

// FindByPin returns the placed pin with the given id, or nil.
func FindByPin(placed []PlacedPin, pinID int64) *PlacedPin {
	for i := range placed {
		if placed[i].PinID == pinID {
			return &placed[i]
		}
	}
	return nil
}

// FindByPortfolio returns the first placed pin for a portfolio, or nil.
// Used for cross-highlighting when selection originates in the card list.
func FindByPortfolio(placed []PlacedPin, portfolioID int64) *PlacedPin {
	for i := range placed {
		if placed[i].PortfolioID == portfolioID {
			return &placed[i]
		}
	}
	return nil
}
