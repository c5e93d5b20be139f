package prefstore

import (
	"path/filepath"
	"testing"

	"github.com/false0brian/hometypemap/pkg/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFavoriteVendorsRoundTrip(t *testing.T) {
	s := openTest(t)

	ids, err := s.FavoriteVendors()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("fresh store should have no favorites, got %v", ids)
	}

	if err := s.SetFavoriteVendors([]int64{7, 3, 12}); err != nil {
		t.Fatal(err)
	}
	ids, err = s.FavoriteVendors()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 3 || ids[2] != 12 {
		t.Errorf("order not preserved: %v", ids)
	}
}

func TestAddFavoriteVendorIdempotent(t *testing.T) {
	s := openTest(t)
	for i := 0; i < 3; i++ {
		if err := s.AddFavoriteVendor(7); err != nil {
			t.Fatal(err)
		}
	}
	ids, _ := s.FavoriteVendors()
	if len(ids) != 1 {
		t.Errorf("expected one favorite, got %v", ids)
	}
}

func TestAutoFilterFlag(t *testing.T) {
	s := openTest(t)

	on, err := s.AutoFilter()
	if err != nil || on {
		t.Fatalf("default auto filter should be off, got %v err=%v", on, err)
	}
	if err := s.SetAutoFilter(true); err != nil {
		t.Fatal(err)
	}
	if on, _ = s.AutoFilter(); !on {
		t.Error("flag not persisted")
	}
}

func TestFavoritePrefsFeedsFilterResolution(t *testing.T) {
	s := openTest(t)
	if err := s.SetFavoriteVendors([]int64{7}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAutoFilter(true); err != nil {
		t.Fatal(err)
	}

	prefs, err := s.FavoritePrefs()
	if err != nil {
		t.Fatal(err)
	}
	r := model.Filters{}.Resolve(prefs)
	if r.EffectiveVendorID == nil || *r.EffectiveVendorID != 7 {
		t.Errorf("resolution through stored prefs failed: %v", r.EffectiveVendorID)
	}
}

func TestGallerySideMemory(t *testing.T) {
	s := openTest(t)

	_, ok, err := s.GallerySide(42)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("no side should be remembered initially")
	}

	if err := s.SetGallerySide(42, model.SideBefore); err != nil {
		t.Fatal(err)
	}
	side, ok, err := s.GallerySide(42)
	if err != nil || !ok || side != model.SideBefore {
		t.Errorf("remembered side = %v ok=%v err=%v", side, ok, err)
	}

	// Overwrite.
	if err := s.SetGallerySide(42, model.SideAfter); err != nil {
		t.Fatal(err)
	}
	side, _, _ = s.GallerySide(42)
	if side != model.SideAfter {
		t.Errorf("side not overwritten, got %v", side)
	}
}

func TestAuthTokenLifecycle(t *testing.T) {
	s := openTest(t)

	tok, err := s.AuthToken()
	if err != nil || tok != "" {
		t.Fatalf("fresh store token = %q err=%v", tok, err)
	}
	if err := s.SetAuthToken("tok-abc"); err != nil {
		t.Fatal(err)
	}
	if tok, _ = s.AuthToken(); tok != "tok-abc" {
		t.Errorf("token = %q", tok)
	}
	if err := s.SetAuthToken(""); err != nil {
		t.Fatal(err)
	}
	if tok, _ = s.AuthToken(); tok != "" {
		t.Errorf("cleared token = %q", tok)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddFavoriteVendor(5); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	ids, _ := s2.FavoriteVendors()
	if len(ids) != 1 || ids[0] != 5 {
		t.Errorf("data lost across reopen: %v", ids)
	}
}
