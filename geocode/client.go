package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrNoMatch is returned when a forward lookup yields an empty result set.
	ErrNoMatch = errors.New("no geocoding match")
	// ErrUnavailable is returned on any network, status or parse failure.
	// Callers degrade to a placeholder instead of failing the request.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	requestTimeout = 10 * time.Second
	userAgent      = "wimb/1.0"
)

// Result is a resolved place. Latitude/Longitude echo the input coordinates
// on reverse lookups.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Client calls a Nominatim-compatible geocoding service. Every call is an
// independent outbound request; there is no caching, deduplication or
// rate limiting.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client for the given base URL, falling back to the
// public Nominatim instance when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
	}
}

// nominatim returns lat/lon as JSON strings, and reverse lookups answer with
// an "error" field instead of a non-200 status when nothing is found.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Reverse resolves coordinates to a display address.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (Result, error) {
	reverseRequests.Inc()
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")

	var p place
	if err := c.get(ctx, "/reverse", q, &p); err != nil {
		reverseFailures.Inc()
		return Result{}, err
	}
	if p.Error != "" || p.DisplayName == "" {
		reverseFailures.Inc()
		return Result{}, fmt.Errorf("%w: reverse lookup for %f,%f returned no address", ErrUnavailable, lat, lng)
	}
	return Result{Latitude: lat, Longitude: lng, DisplayName: p.DisplayName}, nil
}

// Forward resolves a place name to coordinates and a display address using
// the first (best) search result.
func (c *Client) Forward(ctx context.Context, placeName string) (Result, error) {
	forwardRequests.Inc()
	q := url.Values{}
	q.Set("q", placeName)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []place
	if err := c.get(ctx, "/search", q, &places); err != nil {
		forwardFailures.Inc()
		return Result{}, err
	}
	if len(places) == 0 {
		noMatches.Inc()
		return Result{}, fmt.Errorf("%w: %q", ErrNoMatch, placeName)
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		forwardFailures.Inc()
		return Result{}, fmt.Errorf("%w: unparseable coordinates for %q", ErrUnavailable, placeName)
	}
	return Result{Latitude: lat, Longitude: lng, DisplayName: places[0].DisplayName}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrUnavailable, resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
