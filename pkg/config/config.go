// Package config handles loading and saving htm configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/htm/config.yaml
//   - State:   ~/.local/state/htm/ (preferences database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// APIConfig points the client at the collaborator service.
type APIConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// MapConfig holds the initial viewport and its limits.
type MapConfig struct {
	CenterLat float64 `yaml:"center_lat,omitempty"`
	CenterLng float64 `yaml:"center_lng,omitempty"`
	Zoom      int     `yaml:"zoom,omitempty"`
	MinZoom   int     `yaml:"min_zoom,omitempty"`
	MaxZoom   int     `yaml:"max_zoom,omitempty"`
	// NearbyRadiusM is the fetch radius used in nearby mode.
	NearbyRadiusM float64 `yaml:"nearby_radius_m,omitempty"`
}

// FetchConfig tunes the debounced fetch pipeline.
type FetchConfig struct {
	// SettleMs is the pause after the last navigation event before a
	// viewport fetch fires.
	SettleMs int `yaml:"settle_ms,omitempty"`
	// GeolocateTimeoutS bounds the one-shot geolocation lookup.
	GeolocateTimeoutS int `yaml:"geolocate_timeout_s,omitempty"`
}

// LocatorConfig configures the geolocation lookup.
type LocatorConfig struct {
	URL string `yaml:"url,omitempty"`
	// Enabled gates geolocation entirely; a disabled locator reports
	// permission denied rather than a network failure.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// UIConfig holds presentation preferences.
type UIConfig struct {
	Theme    string `yaml:"theme,omitempty"` // dark, light
	Operator bool   `yaml:"operator,omitempty"`
}

// Config is the top-level configuration for htm.
type Config struct {
	API     APIConfig     `yaml:"api,omitempty"`
	Map     MapConfig     `yaml:"map,omitempty"`
	Fetch   FetchConfig   `yaml:"fetch,omitempty"`
	Locator LocatorConfig `yaml:"locator,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults. The default
// center is Seoul City Hall, which the demo dataset is anchored to.
func DefaultConfig() Config {
	enabled := true
	return Config{
		API: APIConfig{BaseURL: "http://localhost:8080"},
		Map: MapConfig{
			CenterLat:     37.5663,
			CenterLng:     126.9779,
			Zoom:          14,
			MinZoom:       7,
			MaxZoom:       19,
			NearbyRadiusM: 1500,
		},
		Fetch: FetchConfig{
			SettleMs:          200,
			GeolocateTimeoutS: 9,
		},
		Locator: LocatorConfig{
			URL:     "http://localhost:8080/api/locate",
			Enabled: &enabled,
		},
		UI: UIConfig{Theme: "dark"},
	}
}

// LocatorEnabled resolves the optional enabled flag (default true).
func (c Config) LocatorEnabled() bool {
	return c.Locator.Enabled == nil || *c.Locator.Enabled
}

// ConfigDir returns the XDG config directory for htm.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "htm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "htm")
}

// StateDir returns the XDG state directory for htm.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "htm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "htm")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// normalize pulls out-of-range values back to usable defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.Map.MinZoom <= 0 {
		c.Map.MinZoom = def.Map.MinZoom
	}
	if c.Map.MaxZoom <= c.Map.MinZoom {
		c.Map.MaxZoom = def.Map.MaxZoom
	}
	if c.Map.Zoom < c.Map.MinZoom || c.Map.Zoom > c.Map.MaxZoom {
		c.Map.Zoom = def.Map.Zoom
	}
	if c.Map.NearbyRadiusM <= 0 {
		c.Map.NearbyRadiusM = def.Map.NearbyRadiusM
	}
	if c.Fetch.SettleMs <= 0 {
		c.Fetch.SettleMs = def.Fetch.SettleMs
	}
	if c.Fetch.GeolocateTimeoutS <= 0 {
		c.Fetch.GeolocateTimeoutS = def.Fetch.GeolocateTimeoutS
	}
}
