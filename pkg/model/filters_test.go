package model

import "testing"

func i64(v int64) *int64 { return &v }

func TestResolveFavoriteVendorFallback(t *testing.T) {
	fav := FavoritePrefs{VendorIDs: []int64{7}, AutoFilter: true}

	r := Filters{}.Resolve(fav)
	if r.EffectiveVendorID == nil || *r.EffectiveVendorID != 7 {
		t.Fatalf("expected favorite vendor 7, got %v", r.EffectiveVendorID)
	}
}

func TestResolveExplicitVendorWins(t *testing.T) {
	fav := FavoritePrefs{VendorIDs: []int64{7}, AutoFilter: true}

	r := Filters{VendorID: i64(9)}.Resolve(fav)
	if r.EffectiveVendorID == nil || *r.EffectiveVendorID != 9 {
		t.Fatalf("explicit vendor must win over favorites, got %v", r.EffectiveVendorID)
	}
}

func TestResolveAutoFilterDisabled(t *testing.T) {
	fav := FavoritePrefs{VendorIDs: []int64{7}, AutoFilter: false}

	r := Filters{}.Resolve(fav)
	if r.EffectiveVendorID != nil {
		t.Fatalf("expected no vendor when auto filter is off, got %d", *r.EffectiveVendorID)
	}
}

func TestResolveNoFavorites(t *testing.T) {
	r := Filters{}.Resolve(FavoritePrefs{AutoFilter: true})
	if r.EffectiveVendorID != nil {
		t.Fatalf("expected no vendor with empty favorites, got %d", *r.EffectiveVendorID)
	}
}

func TestResolveDoesNotAliasExplicitPointer(t *testing.T) {
	explicit := int64(3)
	f := Filters{VendorID: &explicit}
	r := f.Resolve(FavoritePrefs{})
	explicit = 99
	if *r.EffectiveVendorID != 3 {
		t.Fatalf("resolved vendor must not alias the input pointer")
	}
}

func TestResolvedFiltersEqual(t *testing.T) {
	area := 59.0
	tests := []struct {
		name string
		a, b ResolvedFilters
		want bool
	}{
		{"both empty", ResolvedFilters{}, ResolvedFilters{}, true},
		{"same vendor", ResolvedFilters{EffectiveVendorID: i64(7)}, ResolvedFilters{EffectiveVendorID: i64(7)}, true},
		{"different vendor", ResolvedFilters{EffectiveVendorID: i64(7)}, ResolvedFilters{EffectiveVendorID: i64(9)}, false},
		{"nil vs set vendor", ResolvedFilters{}, ResolvedFilters{EffectiveVendorID: i64(7)}, false},
		{"same area", ResolvedFilters{MinArea: &area}, ResolvedFilters{MinArea: &area}, true},
		{"scope differs", ResolvedFilters{WorkScope: "full"}, ResolvedFilters{WorkScope: "partial"}, false},
		{"budget differs", ResolvedFilters{BudgetMax: i64(1000)}, ResolvedFilters{BudgetMax: i64(2000)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}
