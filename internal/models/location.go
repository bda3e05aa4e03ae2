package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Location is a WGS-84 coordinate in degrees.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon float64 `json:"lng" yaml:"lng" parquet:"name=lng,type=DOUBLE"`
}

// Polyline is an ordered path from origin to destination.
type Polyline []Location

// Route is one routing alternative between two points.
type Route struct {
	Polyline        Polyline     `json:"polyline"`
	DistanceMeters  float64      `json:"distance"`
	DurationSeconds float64      `json:"duration"`
	Checkpoints     []Checkpoint `json:"signals"`
}

func (l Location) IsFinite() bool {
	return !math.IsNaN(l.Lat) && !math.IsInf(l.Lat, 0) &&
		!math.IsNaN(l.Lon) && !math.IsInf(l.Lon, 0)
}

func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lon)
}

// ParseLocation parses "lat,lon".
func ParseLocation(input string) (Location, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("invalid coordinate: %s", input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return Location{}, fmt.Errorf("invalid lat/lon: %s", input)
	}
	return Location{Lat: lat, Lon: lon}, nil
}

// Validate reports why the polyline cannot be used as a route, if it can't.
func (p Polyline) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("polyline needs at least 2 points, got %d", len(p))
	}
	for i, loc := range p {
		if !loc.IsFinite() {
			return fmt.Errorf("polyline point %d is not a finite coordinate", i)
		}
	}
	return nil
}
