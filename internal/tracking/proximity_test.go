package tracking

import (
	"testing"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	th := Threshold{Metric: models.ProximityHaversine, Distance: 200}
	near := models.Location{Lat: 0, Lon: 0.001} // ~111 m from origin
	far := models.Location{Lat: 0, Lon: 0.01}    // ~1.1 km from origin
	origin := models.Location{Lat: 0, Lon: 0}

	checkpoints := []models.Checkpoint{
		{ID: "red-near", Location: near, State: models.StateRed},
		{ID: "red-far", Location: far, State: models.StateRed},
		{ID: "yellow-near", Location: near, State: models.StateYellow},
		{ID: "yellow-far", Location: far, State: models.StateYellow},
		{ID: "green-near", Location: near, State: models.StateGreen},
		{ID: "green-far", Location: far, State: models.StateGreen},
	}

	crossings := Evaluate(origin, checkpoints, th)

	require.Len(t, crossings, 2)
	assert.Equal(t, "red-near", crossings[0].ID)
	assert.Equal(t, CrossingEnter, crossings[0].Kind)
	assert.InDelta(t, 111.19, crossings[0].Distance, 0.05)
	assert.Equal(t, "green-far", crossings[1].ID)
	assert.Equal(t, CrossingExit, crossings[1].Kind)
}

func TestEvaluate_EmptySet(t *testing.T) {
	th := Threshold{Metric: models.ProximityHaversine, Distance: 200}
	assert.Empty(t, Evaluate(models.Location{}, nil, th))
}

func TestEvaluate_Planar(t *testing.T) {
	th := Threshold{Metric: models.ProximityPlanar, Distance: 0.0012}
	checkpoints := []models.Checkpoint{
		{ID: "a", Location: models.Location{Lat: 0.001, Lon: 0}, State: models.StateRed},
		{ID: "b", Location: models.Location{Lat: 0.002, Lon: 0}, State: models.StateRed},
	}

	crossings := Evaluate(models.Location{}, checkpoints, th)

	require.Len(t, crossings, 1)
	assert.Equal(t, "a", crossings[0].ID)
}

func TestThresholdFromConfig(t *testing.T) {
	cfg := models.TrackingConfig{ProximityMetric: models.ProximityPlanar, ProximityMeters: 200, ProximityDegrees: 0.0012}
	assert.Equal(t, Threshold{Metric: models.ProximityPlanar, Distance: 0.0012}, ThresholdFromConfig(cfg))

	cfg.ProximityMetric = models.ProximityHaversine
	assert.Equal(t, Threshold{Metric: models.ProximityHaversine, Distance: 200}, ThresholdFromConfig(cfg))
}
