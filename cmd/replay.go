package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/Rk346278/real-time-ambulance/internal/geocode"
	"github.com/Rk346278/real-time-ambulance/internal/osrm"
	"github.com/Rk346278/real-time-ambulance/internal/replay"
	"github.com/Rk346278/real-time-ambulance/internal/tracking"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Drive a simulated ambulance along a route and print the events",
	Long: `replay moves a simulated ambulance along a route at a fixed cadence, feeding
each interpolated position to the tracker. The route comes from a YAML trip file
(--trip) or from OSRM between --source and --target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		trip, err := tripFromFlags()
		if err != nil {
			return err
		}

		hub := broadcast.NewHub(logger)
		defer hub.Close()
		sub := hub.Subscribe("console", cfg.Tracking.SubscriberBuffer)
		sink := broadcast.NewConsoleSink(cmd.OutOrStdout())
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			broadcast.Forward(ctx, sub, sink, logger)
		}()

		session, deriver, err := newSession(cfg, hub)
		if err != nil {
			return err
		}

		polyline := trip.Polyline
		if len(polyline) == 0 {
			var geocoder geocode.Geocoder
			if cfg.Geocode.GoogleAPIKey != "" {
				if geocoder, err = geocode.NewGoogleGeocoder(cfg.Geocode); err != nil {
					return err
				}
			}
			from, err := geocode.ResolvePlace(ctx, geocoder, trip.Source)
			if err != nil {
				return err
			}
			to, err := geocode.ResolvePlace(ctx, geocoder, trip.Target)
			if err != nil {
				return err
			}
			routes, err := osrm.NewClient(cfg.OSRM, deriver).GetRoute(ctx, from, to)
			if err != nil {
				return err
			}
			polyline = routes[0].Polyline
		}

		info, err := session.StartRoute(polyline, tracking.RouteMeta{From: trip.From, To: trip.To})
		if err != nil {
			return err
		}
		logger.Info("replaying route", "route", info.RouteID, "points", len(polyline), "signals", len(info.Checkpoints))

		opts := replay.Options{
			StepsPerSegment: cfg.Replay.StepsPerSegment,
			Interval:        cfg.Replay.Interval,
			Speed:           trip.Speed,
			From:            trip.From,
			To:              trip.To,
			Progress:        cmd.ErrOrStderr(),
			Logger:          logger,
		}
		if trip.Speed != "" {
			if opts.SpeedMPS, err = replay.ParseSpeed(trip.Speed); err != nil {
				return err
			}
		}

		stats, runErr := replay.Run(ctx, session, polyline, opts)
		session.StopRoute()
		hub.Unsubscribe(sub)
		wg.Wait()

		fmt.Fprintf(cmd.ErrOrStderr(), "\nreplayed %d samples, %d signal transitions, %d signals approached\n",
			stats.Samples, stats.Transitions, stats.Approaches)
		return runErr
	},
}

func tripFromFlags() (*replay.Trip, error) {
	trip := &replay.Trip{}
	if path := viper.GetString("replay.trip"); path != "" {
		var err error
		if trip, err = replay.LoadTrip(path); err != nil {
			return nil, err
		}
	}

	if v := viper.GetString("replay.source"); v != "" {
		trip.Source = v
	}
	if v := viper.GetString("replay.target"); v != "" {
		trip.Target = v
	}
	if trip.Speed == "" {
		trip.Speed = cfg.Replay.Speed
	}
	if trip.From == "" {
		trip.From = trip.Source
	}
	if trip.To == "" {
		trip.To = trip.Target
	}

	if len(trip.Polyline) == 0 && (trip.Source == "" || trip.Target == "") {
		return nil, fmt.Errorf("replay needs --trip or both --source and --target")
	}
	return trip, nil
}

func init() {
	replayCmd.Flags().String("trip", "", "YAML trip file")
	replayCmd.Flags().String("source", "", `route start, "lat,lng" or a place name`)
	replayCmd.Flags().String("target", "", `route end, "lat,lng" or a place name`)
	replayCmd.Flags().Int("steps", 20, "samples per route segment")
	replayCmd.Flags().Duration("interval", 0, "time between samples (default from config)")

	_ = viper.BindPFlag("replay.trip", replayCmd.Flags().Lookup("trip"))
	_ = viper.BindPFlag("replay.source", replayCmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("replay.target", replayCmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("replay.steps_per_segment", replayCmd.Flags().Lookup("steps"))
	_ = viper.BindPFlag("replay.interval", replayCmd.Flags().Lookup("interval"))

	rootCmd.AddCommand(replayCmd)
}

