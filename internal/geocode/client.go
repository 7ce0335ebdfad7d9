package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amana-asso/delivery-service/internal/config"
	"github.com/amana-asso/delivery-service/internal/geo"
)

// ErrNoResult means the provider returned no match for the address.
var ErrNoResult = errors.New("geocode: no result")

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Client resolves free-text addresses against a Pelias-compatible
// geocoding endpoint (/geocode/search).
type Client struct {
	baseURL string
	apiKey  string
	session *http.Client
}

func NewClient(cfg config.GeocodeConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		session: &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode returns the best-match coordinates for an address, or
// ErrNoResult when the provider finds nothing.
func (c *Client) Geocode(ctx context.Context, address string) (*geo.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("geocode: address must be non-empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode/search", nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("text", address)
	q.Set("boundary.country", "FR")
	q.Set("size", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return nil, ErrNoResult
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return nil, fmt.Errorf("geocode: invalid coordinate format for %q", address)
	}

	// Provider order is [lon, lat].
	return &geo.Coordinates{Lat: coords[1], Lon: coords[0]}, nil
}
