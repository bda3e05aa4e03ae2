package replay

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"gopkg.in/yaml.v3"
)

// Trip is a replayable ambulance run read from YAML. Either Polyline is given
// directly or Source and Target ("lat,lng") are resolved through the router.
type Trip struct {
	Name     string          `yaml:"name"`
	From     string          `yaml:"from"`
	To       string          `yaml:"to"`
	Source   string          `yaml:"source"`
	Target   string          `yaml:"target"`
	Speed    string          `yaml:"speed"`
	Polyline models.Polyline `yaml:"polyline"`
}

func LoadTrip(path string) (*Trip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trip file: %w", err)
	}

	var trip Trip
	if err := yaml.Unmarshal(data, &trip); err != nil {
		return nil, fmt.Errorf("parse trip file %s: %w", path, err)
	}
	if len(trip.Polyline) == 0 && (trip.Source == "" || trip.Target == "") {
		return nil, fmt.Errorf("trip %s needs either a polyline or both source and target", path)
	}
	if len(trip.Polyline) > 0 {
		if err := trip.Polyline.Validate(); err != nil {
			return nil, fmt.Errorf("trip %s: %w", path, err)
		}
	}
	return &trip, nil
}

var speedPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*(km/h|kmh|kph|m/s)?\s*$`)

// ParseSpeed reads values such as "40km/h", "12.5 m/s" or a bare number of
// km/h and returns metres per second.
func ParseSpeed(s string) (float64, error) {
	m := speedPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, fmt.Errorf("invalid speed: %q", s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid speed: %q", s)
	}
	if m[2] == "m/s" {
		return v, nil
	}
	return v / 3.6, nil
}
