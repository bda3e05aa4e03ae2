// Package osrm fetches driving routes from an OSRM server.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/apperr"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/route"
)

// Router resolves a pair of coordinates into candidate routes, best first.
type Router interface {
	GetRoute(ctx context.Context, from, to models.Location) ([]models.Route, error)
}

type Client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
	deriver    route.Deriver
}

// NewClient builds a client for cfg. Each returned route carries the
// checkpoints deriver finds on its geometry; a nil deriver leaves them empty.
func NewClient(cfg models.OSRMConfig, deriver route.Deriver) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		profile:    profile,
		httpClient: &http.Client{Timeout: timeout},
		deriver:    deriver,
	}
}

// OSRM response format
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// GetRoute asks OSRM for the route between from and to, alternatives included.
// Transport failures, non-200 answers and undecodable bodies all wrap
// apperr.ErrProviderUnavailable.
func (c *Client) GetRoute(ctx context.Context, from, to models.Location) ([]models.Route, error) {
	if !from.IsFinite() || !to.IsFinite() {
		return nil, fmt.Errorf("get route: %w: coordinate is not finite", apperr.ErrInvalidInput)
	}

	url := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson&alternatives=true",
		c.baseURL, c.profile, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get route: %w: %v", apperr.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("get route: %w: OSRM returned %d", apperr.ErrProviderUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("get route: %w: decode response: %v", apperr.ErrProviderUnavailable, err)
	}

	switch {
	case parsed.Code == "NoRoute" || parsed.Code == "NoSegment":
		return nil, fmt.Errorf("get route %s -> %s: %w: %s", from, to, apperr.ErrNotFound, parsed.Message)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get route: %w: OSRM returned %d %s", apperr.ErrProviderUnavailable, resp.StatusCode, parsed.Code)
	case len(parsed.Routes) == 0:
		return nil, fmt.Errorf("get route %s -> %s: %w", from, to, apperr.ErrNotFound)
	}

	routes := make([]models.Route, 0, len(parsed.Routes))
	for _, r := range parsed.Routes {
		polyline := make(models.Polyline, 0, len(r.Geometry.Coordinates))
		for _, pair := range r.Geometry.Coordinates {
			if len(pair) < 2 {
				continue
			}
			polyline = append(polyline, models.Location{Lon: pair[0], Lat: pair[1]})
		}

		checkpoints := []models.Checkpoint{}
		if c.deriver != nil {
			checkpoints = c.deriver.Derive(polyline)
		}
		routes = append(routes, models.Route{
			Polyline:        polyline,
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
			Checkpoints:     checkpoints,
		})
	}
	return routes, nil
}
