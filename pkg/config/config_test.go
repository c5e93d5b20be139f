package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Fetch.SettleMs != 200 {
		t.Errorf("default settle = %d, want 200", cfg.Fetch.SettleMs)
	}
	if cfg.Map.Zoom != 14 {
		t.Errorf("default zoom = %d, want 14", cfg.Map.Zoom)
	}
	if !cfg.LocatorEnabled() {
		t.Error("locator should default to enabled")
	}
}

func TestLoadFromParsesAndNormalizes(t *testing.T) {
	data := `
api:
  base_url: "https://htm.example.com/"
map:
  zoom: 99
  min_zoom: 5
  max_zoom: 18
fetch:
  settle_ms: 350
locator:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://htm.example.com" {
		t.Errorf("base URL not trimmed: %q", cfg.API.BaseURL)
	}
	if cfg.Map.Zoom != 14 {
		t.Errorf("out-of-range zoom should fall back to default, got %d", cfg.Map.Zoom)
	}
	if cfg.Fetch.SettleMs != 350 {
		t.Errorf("settle = %d, want 350", cfg.Fetch.SettleMs)
	}
	if cfg.LocatorEnabled() {
		t.Error("locator should be disabled")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.UI.Operator = true
	cfg.Map.CenterLat = 35.1796

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !got.UI.Operator || got.Map.CenterLat != 35.1796 {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestInvalidYAMLSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}
