// ABOUTME: HTTP client for the providers/restaurants backend API.
// ABOUTME: Forwards the session token as a bearer token and records metrics per call.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2389/provadmin/internal/auth"
	"github.com/2389/provadmin/internal/metrics"
	"github.com/2389/provadmin/internal/provider"
)

const maxErrorBody = 4 * 1024

// Client talks to the backend REST API. It implements provider.Service and
// provider.RestaurantService.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:9001/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/login", body, &resp, nil); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &NetworkError{Op: "login", Err: fmt.Errorf("response has no access_token")}
	}
	return resp.AccessToken, nil
}

func (c *Client) ListProviders(ctx context.Context, restaurantID string) ([]provider.Provider, error) {
	q := url.Values{"restaurante_id": {restaurantID}}
	var out []provider.Provider
	if err := c.do(ctx, "list", http.MethodGet, "/proveedores?"+q.Encode(), nil, &out, nil); err != nil {
		return nil, err
	}
	if out == nil {
		out = []provider.Provider{}
	}
	return out, nil
}

func (c *Client) GetProvider(ctx context.Context, id int64) (provider.Provider, error) {
	var out provider.Provider
	err := c.do(ctx, "get", http.MethodGet, providerPath(id), nil, &out, nil)
	return out, err
}

func (c *Client) DeleteProvider(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, providerPath(id), nil, nil, nil)
}

func (c *Client) UpdateProvider(ctx context.Context, id int64, f provider.Fields) (provider.Provider, error) {
	var out provider.Provider
	err := c.do(ctx, "update", http.MethodPut, providerPath(id), f, &out, nil)
	return out, err
}

func (c *Client) CreateProvider(ctx context.Context, restaurantID string, f provider.Fields) (provider.Provider, error) {
	rid, err := strconv.ParseInt(restaurantID, 10, 64)
	if err != nil {
		return provider.Provider{}, fmt.Errorf("create: restaurant id %q: %w", restaurantID, provider.ErrValidation)
	}
	body := struct {
		provider.Fields
		RestaurantID int64 `json:"restaurante_id"`
	}{Fields: f, RestaurantID: rid}

	var out provider.Provider
	err = c.do(ctx, "create", http.MethodPost, "/proveedores", body, &out, nil)
	return out, err
}

// restaurantWire is the backend representation of a restaurant.
type restaurantWire struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	City        string  `json:"ciudad"`
	Zone        string  `json:"zona"`
	Percentage  float64 `json:"porcentaje"`
	Status      string  `json:"estado"`
	Description string  `json:"descripcion"`
}

func (w restaurantWire) restaurant() provider.Restaurant {
	return provider.Restaurant{
		ID:          strconv.FormatInt(w.ID, 10),
		Name:        w.Name,
		City:        w.City,
		Zone:        w.Zone,
		Percentage:  w.Percentage,
		Status:      w.Status,
		Description: w.Description,
	}
}

func (c *Client) GetRestaurant(ctx context.Context, id string) (provider.Restaurant, error) {
	var w restaurantWire
	path := "/restaurantes/" + url.PathEscape(id)
	if err := c.do(ctx, "get_restaurant", http.MethodGet, path, nil, &w, provider.ErrRestaurantNotFound); err != nil {
		return provider.Restaurant{}, err
	}
	return w.restaurant(), nil
}

func (c *Client) ListRestaurants(ctx context.Context) ([]provider.Restaurant, error) {
	var ws []restaurantWire
	if err := c.do(ctx, "list_restaurants", http.MethodGet, "/restaurantes", nil, &ws, nil); err != nil {
		return nil, err
	}
	out := make([]provider.Restaurant, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.restaurant())
	}
	return out, nil
}

func providerPath(id int64) string {
	return "/proveedores/" + strconv.FormatInt(id, 10)
}

// do performs one API call. in is JSON-encoded when non-nil; out is decoded
// from a 2xx response when non-nil. notFound overrides the 404 sentinel.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, notFound error) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveBackend(op, start, err) }()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := auth.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{
			Op:       op,
			Status:   resp.StatusCode,
			Message:  errorMessage(resp.Body),
			notFound: notFound,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body. The
// backend answers with either {"msg": ...} or {"message": ...}.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	switch {
	case body.Msg != "":
		return body.Msg
	case body.Message != "":
		return body.Message
	default:
		return body.Error
	}
}
