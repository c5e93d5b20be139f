// Package api is the HTTP client for the HomeTypeMap collaborator service.
//
// The client is deliberately thin: it shapes requests, decodes responses,
// and classifies failures into the small taxonomy the UI cares about
// (network/server, unauthenticated, already-exists). It never retries;
// every retry in this application is user-initiated.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/false0brian/hometypemap/pkg/model"
)

// Common error values. Callers classify with errors.Is / errors.As.
var (
	// ErrNetwork wraps transport-level failures (connection refused,
	// timeout, DNS). The prior displayed data is left in place.
	ErrNetwork = errors.New("network error")
	// ErrUnauthenticated is returned when a call requires a session and
	// none is present, or the server rejected the token.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrAlreadyExists marks idempotent conflicts (favorite already
	// saved). The UI treats it as a soft success.
	ErrAlreadyExists = errors.New("already exists")
)

// StatusError is a non-2xx response that is not one of the named cases.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Client talks to the collaborator API. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets a persisted session token at construction time.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the session token for subsequent calls. An empty
// token clears the session.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token ("" when signed out).
func (c *Client) Token() string { return c.token }

// Authenticated reports whether a session token is present.
func (c *Client) Authenticated() bool { return c.token != "" }

// PinsResult is the bounds-mode fetch payload: pre-clustered groups plus
// individually renderable complexes.
type PinsResult struct {
	Clusters  []model.ClusterPin `json:"clusters"`
	Complexes []model.ComplexPin `json:"complexes"`
}

// NearbyResult is the radius-mode fetch payload.
type NearbyResult struct {
	CenterLat float64            `json:"centerLat"`
	CenterLng float64            `json:"centerLng"`
	RadiusM   float64            `json:"radiusM"`
	Items     []model.ComplexPin `json:"items"`
}

// PortfolioPage is one page of portfolio cards for a unit type.
type PortfolioPage struct {
	Items []model.PortfolioCard `json:"items"`
	Total int                   `json:"total"`
}

// Pins fetches clusters and complexes for the viewport rectangle.
func (c *Client) Pins(ctx context.Context, b model.Bounds, f model.ResolvedFilters) (PinsResult, error) {
	q := url.Values{}
	q.Set("south", floatParam(b.South))
	q.Set("west", floatParam(b.West))
	q.Set("north", floatParam(b.North))
	q.Set("east", floatParam(b.East))
	q.Set("zoom", strconv.Itoa(b.Zoom))
	addFilterParams(q, f)

	var out PinsResult
	err := c.get(ctx, "/api/pins", q, &out)
	return out, err
}

// Nearby fetches complexes around a center point, with server-computed
// distances.
func (c *Client) Nearby(ctx context.Context, lat, lng, radiusM float64, f model.ResolvedFilters) (NearbyResult, error) {
	q := url.Values{}
	q.Set("lat", floatParam(lat))
	q.Set("lng", floatParam(lng))
	q.Set("radiusM", floatParam(radiusM))
	addFilterParams(q, f)

	var out NearbyResult
	err := c.get(ctx, "/api/nearby", q, &out)
	return out, err
}

// ComplexDetail fetches a complex and its unit types.
func (c *Client) ComplexDetail(ctx context.Context, complexID int64) (model.ComplexDetail, error) {
	var out model.ComplexDetail
	err := c.get(ctx, "/api/complexes/"+strconv.FormatInt(complexID, 10), nil, &out)
	return out, err
}

// Portfolios fetches the card list for a unit type under the resolved
// filters.
func (c *Client) Portfolios(ctx context.Context, complexID, unitTypeID int64, f model.ResolvedFilters) (PortfolioPage, error) {
	q := url.Values{}
	q.Set("complexId", strconv.FormatInt(complexID, 10))
	q.Set("unitTypeId", strconv.FormatInt(unitTypeID, 10))
	addFilterParams(q, f)

	var out PortfolioPage
	err := c.get(ctx, "/api/portfolios", q, &out)
	return out, err
}

// Favorite marks a portfolio as a favorite. An already-favorited
// portfolio returns ErrAlreadyExists, which callers map to soft success.
func (c *Client) Favorite(ctx context.Context, portfolioID int64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	body := map[string]any{"portfolioId": portfolioID}
	return c.send(ctx, http.MethodPost, "/api/favorites", body, nil)
}

// QuoteRequest submits a quote request, optionally tied to a vendor or a
// portfolio.
type QuoteRequest struct {
	VendorID    *int64 `json:"vendorId,omitempty"`
	PortfolioID *int64 `json:"portfolioId,omitempty"`
	Message     string `json:"message"`
}

// QuoteResult is the acknowledgment for a submitted quote request.
type QuoteResult struct {
	CreatedAt time.Time `json:"createdAt"`
}

// Quote submits a quote request. Requires a session.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	var out QuoteResult
	if !c.Authenticated() {
		return out, ErrUnauthenticated
	}
	err := c.send(ctx, http.MethodPost, "/api/quotes", req, &out)
	return out, err
}

// PinWrite is the payload for creating or moving a floor-plan pin.
type PinWrite struct {
	PortfolioID int64   `json:"portfolioId"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Title       string  `json:"title,omitempty"`
}

// CreatePin creates a floor-plan pin and returns it with its assigned id.
func (c *Client) CreatePin(ctx context.Context, w PinWrite) (model.FloorPlanPin, error) {
	var out model.FloorPlanPin
	if !c.Authenticated() {
		return out, ErrUnauthenticated
	}
	err := c.send(ctx, http.MethodPost, "/api/floorplan-pins", w, &out)
	return out, err
}

// UpdatePin persists new coordinates for an existing pin.
func (c *Client) UpdatePin(ctx context.Context, pinID int64, x, y float64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	body := map[string]any{"x": x, "y": y}
	return c.send(ctx, http.MethodPatch, "/api/floorplan-pins/"+strconv.FormatInt(pinID, 10), body, nil)
}

// DeletePin removes a pin.
func (c *Client) DeletePin(ctx context.Context, pinID int64) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	return c.send(ctx, http.MethodDelete, "/api/floorplan-pins/"+strconv.FormatInt(pinID, 10), nil, nil)
}

// Session is the authenticated identity returned by the auth endpoints.
type Session struct {
	Token   string `json:"token"`
	UserKey string `json:"userKey"`
	Name    string `json:"name,omitempty"`
}

// Login exchanges credentials for a bearer token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return out, err
	}
	c.token = out.Token
	return out, nil
}

// Signup registers a new account and installs the issued token.
func (c *Client) Signup(ctx context.Context, email, password, name string) (Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.send(ctx, http.MethodPost, "/api/auth/signup", body, &out); err != nil {
		return out, err
	}
	c.token = out.Token
	return out, nil
}

// Revalidate checks the persisted token against the server. On any
// rejection the local session is cleared; transport failures keep the
// token so a later retry can still succeed.
func (c *Client) Revalidate(ctx context.Context) (Session, error) {
	var out Session
	if c.token == "" {
		return out, ErrUnauthenticated
	}
	err := c.get(ctx, "/api/auth/me", nil, &out)
	if errors.Is(err, ErrUnauthenticated) {
		c.token = ""
	}
	return out, err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusConflict:
		return ErrAlreadyExists
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func addFilterParams(q url.Values, f model.ResolvedFilters) {
	if f.WorkScope != "" {
		q.Set("workScope", f.WorkScope)
	}
	if f.MinArea != nil {
		q.Set("minArea", floatParam(*f.MinArea))
	}
	if f.BudgetMax != nil {
		q.Set("budgetMax", strconv.FormatInt(*f.BudgetMax, 10))
	}
	if f.EffectiveVendorID != nil {
		q.Set("vendorId", strconv.FormatInt(*f.EffectiveVendorID, 10))
	}
}

func floatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
