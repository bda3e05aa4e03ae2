// Package route turns a routing polyline into the ordered set of signal
// checkpoints an ambulance will pass.
package route

import (
	"fmt"

	"github.com/Rk346278/real-time-ambulance/internal/geo"
	"github.com/Rk346278/real-time-ambulance/internal/models"
)

// Deriver produces checkpoints in polyline traversal order, all RED.
type Deriver interface {
	Derive(polyline models.Polyline) []models.Checkpoint
}

// AngleDeriver places a checkpoint at every vertex where the path turns by more
// than ThresholdDeg degrees.
type AngleDeriver struct {
	ThresholdDeg float64
}

func (d AngleDeriver) Derive(polyline models.Polyline) []models.Checkpoint {
	checkpoints := make([]models.Checkpoint, 0)

	for i := 1; i < len(polyline)-1; i++ {
		angle, ok := geo.TurnAngle(polyline[i-1], polyline[i], polyline[i+1])
		if !ok {
			continue
		}
		if angle > d.ThresholdDeg {
			n := len(checkpoints)
			checkpoints = append(checkpoints, newCheckpoint(n, fmt.Sprintf("Intersection %d", n), polyline[i]))
		}
	}

	return checkpoints
}

// DistanceDeriver places a checkpoint each time the running arc length since
// the previous checkpoint reaches IntervalMeters.
type DistanceDeriver struct {
	IntervalMeters float64
}

func (d DistanceDeriver) Derive(polyline models.Polyline) []models.Checkpoint {
	checkpoints := make([]models.Checkpoint, 0)

	var accumulated float64
	for i := 1; i < len(polyline); i++ {
		accumulated += geo.Haversine(polyline[i-1], polyline[i])
		if accumulated >= d.IntervalMeters {
			n := len(checkpoints)
			checkpoints = append(checkpoints, newCheckpoint(n, fmt.Sprintf("S%d", n+1), polyline[i]))
			accumulated = 0
		}
	}

	return checkpoints
}

// NewDeriver builds the deriver selected by cfg.Strategy.
func NewDeriver(cfg models.CheckpointConfig) (Deriver, error) {
	switch cfg.Strategy {
	case models.CheckpointStrategyAngle, "":
		return AngleDeriver{ThresholdDeg: cfg.AngleThresholdDeg}, nil
	case models.CheckpointStrategyDistance:
		return DistanceDeriver{IntervalMeters: cfg.IntervalMeters}, nil
	default:
		return nil, fmt.Errorf("unsupported checkpoint strategy: %s", cfg.Strategy)
	}
}

func newCheckpoint(index int, name string, loc models.Location) models.Checkpoint {
	return models.Checkpoint{
		ID:       fmt.Sprintf("cp-%d", index),
		Name:     name,
		Location: loc,
		State:    models.StateRed,
	}
}
