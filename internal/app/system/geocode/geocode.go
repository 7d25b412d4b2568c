// internal/app/system/geocode/geocode.go

// Package geocode resolves postal addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/metrics"
	"googlemaps.github.io/maps"
)

// DefaultEndpoint is the Google Maps web service host.
const DefaultEndpoint = "https://maps.googleapis.com"

// geocodePath is appended by the maps client to the base URL.
const geocodePath = "/maps/api/geocode/json"

// ErrNoResult means the service answered but found no match.
var ErrNoResult = errors.New("geocode: no result")

// Geocoder looks up the coordinates of address.
type Geocoder interface {
	Geocode(ctx context.Context, address, apiKey string) (lat, lng float64, err error)
}

// Google calls the Google Geocoding API through the maps client.
// API keys belong to workspaces, so one client is kept per key.
type Google struct {
	BaseURL string
	HTTP    *http.Client

	mu      sync.Mutex
	clients map[string]*maps.Client
}

// NewGoogle returns a Google geocoder with a 5s client timeout. endpoint may
// be a bare host or the full geocode JSON URL.
func NewGoogle(endpoint string) *Google {
	endpoint = strings.TrimSuffix(strings.TrimRight(endpoint, "/"), geocodePath)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Google{
		BaseURL: endpoint,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		clients: make(map[string]*maps.Client),
	}
}

func (g *Google) client(apiKey string) (*maps.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithBaseURL(g.BaseURL),
		maps.WithHTTPClient(g.HTTP),
	)
	if err != nil {
		return nil, err
	}
	if g.clients == nil {
		g.clients = make(map[string]*maps.Client)
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *Google) Geocode(ctx context.Context, address, apiKey string) (lat, lng float64, err error) {
	defer func() { metrics.RecordGeocode(err) }()

	c, err := g.client(apiKey)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode client: %w", err)
	}
	res, err := c.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: %w", err)
	}
	// ZERO_RESULTS comes back as an empty slice with a nil error.
	if len(res) == 0 {
		return 0, 0, ErrNoResult
	}
	loc := res[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
