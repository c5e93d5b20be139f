// Package geoloc resolves the user's position for nearby mode.
//
// Lookup is a one-shot asynchronous operation with a caller-supplied
// timeout. The two failure classes the UI distinguishes are permission
// denial (geolocation disabled, or the service refusing the lookup) and
// everything else (network, malformed response).
package geoloc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// ErrPermissionDenied means the user or service disallowed the lookup.
// It aborts a mode switch but is not treated as a transport failure.
var ErrPermissionDenied = errors.New("geolocation permission denied")

// Position is a resolved user location.
type Position struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracyM,omitempty"`
}

// Locator resolves the current position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// HTTPLocator queries an IP-geolocation endpoint.
type HTTPLocator struct {
	URL     string
	Enabled bool
	Client  *http.Client
}

// NewHTTPLocator builds a locator against the given endpoint.
func NewHTTPLocator(url string, enabled bool) *HTTPLocator {
	return &HTTPLocator{
		URL:     url,
		Enabled: enabled,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Locate performs the lookup. A disabled locator reports permission
// denial without touching the network.
func (l *HTTPLocator) Locate(ctx context.Context) (Position, error) {
	if !l.Enabled {
		return Position{}, ErrPermissionDenied
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return Position{}, fmt.Errorf("building locate request: %w", err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("locating: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return Position{}, ErrPermissionDenied
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Position{}, fmt.Errorf("locate service returned %d", resp.StatusCode)
	}

	var pos Position
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		return Position{}, fmt.Errorf("decoding position: %w", err)
	}
	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return Position{}, fmt.Errorf("locate service returned out-of-range position (%v, %v)", pos.Lat, pos.Lng)
	}
	return pos, nil
}

// Fixed is a Locator that always returns the same position. Useful for
// tests and demo configurations.
type Fixed struct {
	Pos Position
	Err error
}

func (f Fixed) Locate(ctx context.Context) (Position, error) {
	if f.Err != nil {
		return Position{}, f.Err
	}
	return f.Pos, nil
}
