// Package geocode resolves free-text place names into coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rk346278/real-time-ambulance/internal/apperr"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"googlemaps.github.io/maps"
)

type Geocoder interface {
	Geocode(ctx context.Context, place string) (models.Location, error)
}

// GoogleGeocoder uses the Google Maps geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
	region string
}

// NewGoogleGeocoder builds a geocoder from cfg. Extra options are passed to
// the maps client, for instance maps.WithBaseURL in tests.
func NewGoogleGeocoder(cfg models.GeocodeConfig, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, errors.New("geocode: google_api_key is not set")
	}
	opts = append([]maps.ClientOption{maps.WithAPIKey(cfg.GoogleAPIKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating Google Maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, region: cfg.Region}, nil
}

// Geocode returns the first match for place. No match is apperr.ErrNotFound;
// a failed request is apperr.ErrProviderUnavailable.
func (g *GoogleGeocoder) Geocode(ctx context.Context, place string) (models.Location, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return models.Location{}, fmt.Errorf("geocode: %w: empty place name", apperr.ErrInvalidInput)
	}

	request := &maps.GeocodingRequest{
		Address: place,
		Region:  g.region,
	}

	resp, err := g.client.Geocode(ctx, request)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return models.Location{}, fmt.Errorf("geocode %q: %w", place, apperr.ErrNotFound)
		}
		return models.Location{}, fmt.Errorf("geocode %q: %w: %v", place, apperr.ErrProviderUnavailable, err)
	}
	if len(resp) == 0 {
		return models.Location{}, fmt.Errorf("geocode %q: %w", place, apperr.ErrNotFound)
	}

	return models.Location{
		Lat: resp[0].Geometry.Location.Lat,
		Lon: resp[0].Geometry.Location.Lng,
	}, nil
}

// ResolvePlace accepts either "lat,lng" or a place name and returns the
// coordinate it denotes. g may be nil, in which case only coordinates work.
func ResolvePlace(ctx context.Context, g Geocoder, input string) (models.Location, error) {
	if loc, err := models.ParseLocation(input); err == nil {
		if !loc.IsFinite() {
			return models.Location{}, fmt.Errorf("resolve %q: %w: coordinate is not finite", input, apperr.ErrInvalidInput)
		}
		return loc, nil
	}
	if g == nil {
		return models.Location{}, fmt.Errorf("resolve %q: %w: geocoding is not configured", input, apperr.ErrProviderUnavailable)
	}
	return g.Geocode(ctx, input)
}
