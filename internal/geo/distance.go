package geo

import (
	"math"

	"github.com/Rk346278/real-time-ambulance/internal/models"
)

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b models.Location) float64 {
	lat1 := degreesToRadians(a.Lat)
	lon1 := degreesToRadians(a.Lon)
	lat2 := degreesToRadians(b.Lat)
	lon2 := degreesToRadians(b.Lon)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Planar returns the Euclidean distance between a and b in raw degrees.
// Only meaningful over small regions.
func Planar(a, b models.Location) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

// TurnAngle returns the heading change in degrees, in [0,180], at b when
// travelling a→b→c, treating (lon,lat) as plane coordinates. ok is false when
// either leg has zero length.
func TurnAngle(a, b, c models.Location) (angle float64, ok bool) {
	v1x, v1y := b.Lon-a.Lon, b.Lat-a.Lat
	v2x, v2y := c.Lon-b.Lon, c.Lat-b.Lat

	mag1 := math.Hypot(v1x, v1y)
	mag2 := math.Hypot(v2x, v2y)
	if mag1 == 0 || mag2 == 0 {
		return 0, false
	}

	cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
	// rounding can push cos just outside [-1,1]
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// Interpolate returns the point at fraction t of the way from a to b.
func Interpolate(a, b models.Location, t float64) models.Location {
	return models.Location{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
	}
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
