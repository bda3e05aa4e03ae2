package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/Rk346278/real-time-ambulance/internal/broadcast/producers"
	"github.com/Rk346278/real-time-ambulance/internal/geocode"
	"github.com/Rk346278/real-time-ambulance/internal/osrm"
	"github.com/Rk346278/real-time-ambulance/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and live event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hub := broadcast.NewHub(logger)
		defer hub.Close()

		session, deriver, err := newSession(cfg, hub)
		if err != nil {
			return err
		}
		defer session.StopRoute()

		st, err := openStores(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer st.close()

		var geocoder geocode.Geocoder
		if cfg.Geocode.GoogleAPIKey != "" {
			g, err := geocode.NewGoogleGeocoder(cfg.Geocode)
			if err != nil {
				return err
			}
			geocoder = g
		} else {
			logger.Info("geocoding disabled, places must be given as lat,lng")
		}

		sinks, err := openSinks(cmd)
		if err != nil {
			return err
		}
		var wg sync.WaitGroup
		for name, sink := range sinks {
			sub := hub.Subscribe(name, cfg.Tracking.SubscriberBuffer)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sink.Close()
				broadcast.Forward(ctx, sub, sink, logger)
			}()
		}

		srv := server.New(cfg.Server, server.Deps{
			Session:          session,
			Hub:              hub,
			Router:           osrm.NewClient(cfg.OSRM, deriver),
			Geocoder:         geocoder,
			Drivers:          st.drivers,
			Nurses:           st.nurses,
			Logger:           logger,
			SubscriberBuffer: cfg.Tracking.SubscriberBuffer,
		})
		err = srv.Run(ctx)

		stop()
		wg.Wait()
		return err
	},
}

// openSinks builds the push transports selected by configuration and flags.
func openSinks(cmd *cobra.Command) (map[string]broadcast.Sink, error) {
	sinks := make(map[string]broadcast.Sink)

	if cfg.Kafka.Enabled {
		producer, err := producers.NewSaramaProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		sinks["kafka"] = producer
	}
	if viper.GetBool("serve.console_events") {
		sinks["console"] = broadcast.NewConsoleSink(cmd.OutOrStdout())
	}
	if dir := viper.GetString("serve.events_dir"); dir != "" {
		fileSink, err := broadcast.NewFileSink(dir)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, err
		}
		sinks["file"] = fileSink
	}
	return sinks, nil
}

func init() {
	serveCmd.Flags().Int("port", 3006, "HTTP port")
	serveCmd.Flags().Bool("kafka-enabled", false, "Publish events to Kafka")
	serveCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	serveCmd.Flags().Bool("console-events", false, "Print every event to stdout")
	serveCmd.Flags().String("events-dir", "", "Append events as JSON lines under this directory")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("kafka.enabled", serveCmd.Flags().Lookup("kafka-enabled"))
	_ = viper.BindPFlag("kafka.broker_list", serveCmd.Flags().Lookup("kafka-broker-list"))
	_ = viper.BindPFlag("serve.console_events", serveCmd.Flags().Lookup("console-events"))
	_ = viper.BindPFlag("serve.events_dir", serveCmd.Flags().Lookup("events-dir"))

	rootCmd.AddCommand(serveCmd)
}
