package model

// Selection is the complex -> unit type -> portfolio -> pin chain. Each
// level is meaningful only while every level above it is set; mutating a
// level resets all levels below it, so a non-nil value at depth N always
// implies consistent values at every depth < N.
//
// Zero values (nil pointers) mean "nothing selected at this level".
type Selection struct {
	Complex   *ComplexPin
	UnitType  *UnitType
	Portfolio *PortfolioCard
	PinID     *int64
}

// SelectComplex replaces the complex and clears everything below it.
// Selecting the same complex again is still a reset: the detail is
// refetched and descendants must not survive the reload.
func (s *Selection) SelectComplex(c *ComplexPin) {
	s.Complex = c
	s.UnitType = nil
	s.Portfolio = nil
	s.PinID = nil
}

// SelectUnitType sets the unit type and clears portfolio and pin.
// It is a no-op when no complex is selected.
func (s *Selection) SelectUnitType(u *UnitType) {
	if s.Complex == nil {
		return
	}
	s.UnitType = u
	s.Portfolio = nil
	s.PinID = nil
}

// SelectPortfolio sets the portfolio and clears the pin. It is a no-op
// when no unit type is selected.
func (s *Selection) SelectPortfolio(p *PortfolioCard) {
	if s.Complex == nil || s.UnitType == nil {
		return
	}
	s.Portfolio = p
	s.PinID = nil
}

// SelectPin sets the pin. It is a no-op when no portfolio is selected.
func (s *Selection) SelectPin(pinID int64) {
	if s.Portfolio == nil {
		return
	}
	s.PinID = &pinID
}

// Clear resets the whole chain.
func (s *Selection) Clear() {
	s.SelectComplex(nil)
}

// Consistent verifies the containment invariant: no level is set while a
// level above it is empty.
func (s Selection) Consistent() bool {
	if s.PinID != nil && s.Portfolio == nil {
		return false
	}
	if s.Portfolio != nil && s.UnitType == nil {
		return false
	}
	if s.UnitType != nil && s.Complex == nil {
		return false
	}
	return true
}

// ReconcilePortfolios is called after a portfolio list refresh. If the
// selected portfolio is no longer in the list (for example after a filter
// change), the portfolio and pin selection are cleared rather than left
// pointing at stale data.
func (s *Selection) ReconcilePortfolios(items []PortfolioCard) {
	if s.Portfolio == nil {
		return
	}
	for i := range items {
		if items[i].ID == s.Portfolio.ID {
			s.Portfolio = &items[i]
			return
		}
	}
	s.Portfolio = nil
	s.PinID = nil
}
