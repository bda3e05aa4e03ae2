// Package replay drives a tracking session along a polyline at a fixed
// cadence, the way a real ambulance would report its position.
package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/geo"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/tracking"
	"github.com/schollz/progressbar/v3"
)

// Reporter receives replayed positions; *tracking.Session satisfies it.
type Reporter interface {
	ReportPosition(loc models.Location, meta tracking.PositionMeta) ([]tracking.Transition, error)
}

type Options struct {
	// StepsPerSegment is how many samples each polyline segment is cut into.
	StepsPerSegment int
	// Interval between samples; zero replays as fast as possible.
	Interval time.Duration
	// SpeedMPS drives the ETA estimate. Zero leaves ETA unset.
	SpeedMPS float64
	Speed    string
	From     string
	To       string
	Progress io.Writer
	Logger   *slog.Logger
}

type Stats struct {
	Samples     int
	Transitions int
	Approaches  int
}

// Interpolate cuts every segment of polyline into steps equal parts and
// returns the resulting points, ending exactly on the last vertex.
func Interpolate(polyline models.Polyline, steps int) []models.Location {
	if len(polyline) == 0 {
		return nil
	}
	if steps < 1 {
		steps = 1
	}

	points := make([]models.Location, 0, (len(polyline)-1)*steps+1)
	for i := 0; i < len(polyline)-1; i++ {
		for s := 0; s < steps; s++ {
			points = append(points, geo.Interpolate(polyline[i], polyline[i+1], float64(s)/float64(steps)))
		}
	}
	return append(points, polyline[len(polyline)-1])
}

// remaining returns, for every point, the path length left to the end.
func remaining(points []models.Location) []float64 {
	out := make([]float64, len(points))
	for i := len(points) - 2; i >= 0; i-- {
		out[i] = out[i+1] + geo.Haversine(points[i], points[i+1])
	}
	return out
}

// Run reports every interpolated sample of polyline to r in order, waiting
// Interval between them. It returns early with ctx.Err() when cancelled.
func Run(ctx context.Context, r Reporter, polyline models.Polyline, opts Options) (Stats, error) {
	if err := polyline.Validate(); err != nil {
		return Stats{}, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}

	points := Interpolate(polyline, opts.StepsPerSegment)
	left := remaining(points)

	queue := models.NewSampleQueue()
	start := time.Now()
	for i, p := range points {
		queue.Enqueue(&models.PositionSample{
			At:       start.Add(time.Duration(i) * opts.Interval),
			Step:     i,
			Location: p,
		})
	}

	bar := progressbar.NewOptions(len(points),
		progressbar.OptionSetWriter(opts.Progress),
		progressbar.OptionSetDescription("replaying"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	defer bar.Finish()

	var stats Stats
	report := func(sample *models.PositionSample) error {
		meta := tracking.PositionMeta{From: opts.From, To: opts.To, Speed: opts.Speed}
		if opts.SpeedMPS > 0 {
			eta := left[sample.Step] / opts.SpeedMPS / 60
			meta.ETAMinutes = &eta
		}

		transitions, err := r.ReportPosition(sample.Location, meta)
		if err != nil {
			return fmt.Errorf("report sample %d: %w", sample.Step, err)
		}
		stats.Samples++
		stats.Transitions += len(transitions)
		for _, tr := range transitions {
			if tr.Cause == tracking.CauseApproach {
				stats.Approaches++
				opts.Logger.Info("approaching signal", "signal", tr.Checkpoint.Name, "step", sample.Step)
			}
		}
		_ = bar.Add(1)
		return nil
	}

	if opts.Interval <= 0 {
		for queue.Len() > 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if err := report(queue.Dequeue()); err != nil {
				return stats, err
			}
		}
		return stats, nil
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	// the first sample goes out immediately
	if err := report(queue.Dequeue()); err != nil {
		return stats, err
	}
	for queue.Len() > 0 {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case now := <-ticker.C:
			for _, sample := range queue.DequeueDue(now) {
				if err := report(sample); err != nil {
					return stats, err
				}
			}
		}
	}
	return stats, nil
}
