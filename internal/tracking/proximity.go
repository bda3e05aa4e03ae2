package tracking

import (
	"github.com/Rk346278/real-time-ambulance/internal/geo"
	"github.com/Rk346278/real-time-ambulance/internal/models"
)

// Threshold is the approach radius. Metric selects how Distance is measured:
// meters along the great circle, or raw degrees on a flat plane.
type Threshold struct {
	Metric   string
	Distance float64
}

func (t Threshold) measure(a, b models.Location) float64 {
	if t.Metric == models.ProximityPlanar {
		return geo.Planar(a, b)
	}
	return geo.Haversine(a, b)
}

// ThresholdFromConfig picks the radius matching the configured metric.
func ThresholdFromConfig(cfg models.TrackingConfig) Threshold {
	if cfg.ProximityMetric == models.ProximityPlanar {
		return Threshold{Metric: models.ProximityPlanar, Distance: cfg.ProximityDegrees}
	}
	return Threshold{Metric: models.ProximityHaversine, Distance: cfg.ProximityMeters}
}

type CrossingKind int

const (
	// CrossingEnter is a RED checkpoint that is now inside the radius.
	CrossingEnter CrossingKind = iota
	// CrossingExit is a GREEN checkpoint that is now outside the radius.
	CrossingExit
)

func (k CrossingKind) String() string {
	if k == CrossingExit {
		return "exit"
	}
	return "enter"
}

type Crossing struct {
	ID       string
	Kind     CrossingKind
	Distance float64
}

// Evaluate returns the checkpoints whose state should change for a vehicle at
// pos. YELLOW checkpoints are never reported.
func Evaluate(pos models.Location, checkpoints []models.Checkpoint, th Threshold) []Crossing {
	var crossings []Crossing
	for _, cp := range checkpoints {
		d := th.measure(pos, cp.Location)
		switch {
		case cp.State == models.StateRed && d < th.Distance:
			crossings = append(crossings, Crossing{ID: cp.ID, Kind: CrossingEnter, Distance: d})
		case cp.State == models.StateGreen && d > th.Distance:
			crossings = append(crossings, Crossing{ID: cp.ID, Kind: CrossingExit, Distance: d})
		}
	}
	return crossings
}
