package model

// Filters is the user's explicit filter selection. It is a pure value
// object: the derived vendor default is computed by Resolve, never stored.
type Filters struct {
	WorkScope string   `json:"workScope,omitempty"`
	MinArea   *float64 `json:"minArea,omitempty"`
	BudgetMax *int64   `json:"budgetMax,omitempty"`
	VendorID  *int64   `json:"vendorId,omitempty"`
}

// FavoritePrefs is the durable favorite-vendor preference slice consulted
// when resolving filters.
type FavoritePrefs struct {
	VendorIDs  []int64
	AutoFilter bool
}

// ResolvedFilters is Filters plus the one derived field. EffectiveVendorID
// is what actually parameterizes a portfolio fetch.
type ResolvedFilters struct {
	WorkScope         string
	MinArea           *float64
	BudgetMax         *int64
	EffectiveVendorID *int64
}

// Resolve merges the explicit filters with the favorite-vendor default.
// An explicit vendor choice always wins; the first favorited vendor is
// used only when auto-filtering is enabled and no explicit choice exists.
func (f Filters) Resolve(fav FavoritePrefs) ResolvedFilters {
	r := ResolvedFilters{
		WorkScope: f.WorkScope,
		MinArea:   f.MinArea,
		BudgetMax: f.BudgetMax,
	}
	switch {
	case f.VendorID != nil:
		v := *f.VendorID
		r.EffectiveVendorID = &v
	case fav.AutoFilter && len(fav.VendorIDs) > 0:
		v := fav.VendorIDs[0]
		r.EffectiveVendorID = &v
	}
	return r
}

// Equal reports whether two resolved filter sets parameterize the same
// portfolio fetch. Used to decide whether a filter change re-triggers.
func (r ResolvedFilters) Equal(o ResolvedFilters) bool {
	if r.WorkScope != o.WorkScope {
		return false
	}
	if !eqFloatPtr(r.MinArea, o.MinArea) {
		return false
	}
	if !eqInt64Ptr(r.BudgetMax, o.BudgetMax) {
		return false
	}
	return eqInt64Ptr(r.EffectiveVendorID, o.EffectiveVendorID)
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
