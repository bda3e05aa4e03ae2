package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type TrackingConfig struct {
	YellowDelay      time.Duration `mapstructure:"yellow_delay" validate:"gt=0"`
	GreenDwell       time.Duration `mapstructure:"green_dwell" validate:"gt=0"`
	ProximityMetric  string        `mapstructure:"proximity_metric" validate:"oneof=haversine planar"`
	ProximityMeters  float64       `mapstructure:"proximity_meters" validate:"gt=0"`
	ProximityDegrees float64       `mapstructure:"proximity_degrees" validate:"gt=0"`
	SubscriberBuffer int           `mapstructure:"subscriber_buffer" validate:"gt=0"`
}

type CheckpointConfig struct {
	Strategy          string  `mapstructure:"strategy" validate:"oneof=angle distance"`
	AngleThresholdDeg float64 `mapstructure:"angle_threshold_deg" validate:"gt=0,lte=180"`
	IntervalMeters    float64 `mapstructure:"interval_meters" validate:"gt=0"`
}

type OSRMConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Profile string        `mapstructure:"profile" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeocodeConfig struct {
	GoogleAPIKey string `mapstructure:"google_api_key"`
	Region       string `mapstructure:"region"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type KafkaConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	BrokerList       string        `mapstructure:"broker_list" validate:"required_if=Enabled true"`
	TopicPrefix      string        `mapstructure:"topic_prefix"`
	SessionTimeoutMs int           `mapstructure:"session_timeout_ms"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider" validate:"omitempty,oneof=s3"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type ExportConfig struct {
	Format       string             `mapstructure:"format" validate:"oneof=json parquet"`
	Destination  string             `mapstructure:"destination" validate:"oneof=local cloud"`
	OutputPath   string             `mapstructure:"output_path"`
	OutputFolder string             `mapstructure:"output_folder"`
	Limit        int                `mapstructure:"limit" validate:"gt=0"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
}

type ReplayConfig struct {
	StepsPerSegment int           `mapstructure:"steps_per_segment" validate:"gt=0"`
	Interval        time.Duration `mapstructure:"interval" validate:"gte=0"`
	Speed           string        `mapstructure:"speed"`
}

type Config struct {
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Tracking    TrackingConfig   `mapstructure:"tracking"`
	Checkpoints CheckpointConfig `mapstructure:"checkpoints"`
	OSRM        OSRMConfig       `mapstructure:"osrm"`
	Geocode     GeocodeConfig    `mapstructure:"geocode"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Kafka       KafkaConfig      `mapstructure:"kafka"`
	Export      ExportConfig     `mapstructure:"export"`
	Replay      ReplayConfig     `mapstructure:"replay"`
}

// SetDefaults registers every default on v. The values mirror the dashboards
// the service was built for: 200 m approach radius, 350 m signal spacing.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 3006)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("tracking.yellow_delay", "500ms")
	v.SetDefault("tracking.green_dwell", "3s")
	v.SetDefault("tracking.proximity_metric", ProximityHaversine)
	v.SetDefault("tracking.proximity_meters", 200.0)
	v.SetDefault("tracking.proximity_degrees", 0.0012)
	v.SetDefault("tracking.subscriber_buffer", 64)

	v.SetDefault("checkpoints.strategy", CheckpointStrategyAngle)
	v.SetDefault("checkpoints.angle_threshold_deg", 35.0)
	v.SetDefault("checkpoints.interval_meters", 350.0)

	v.SetDefault("osrm.base_url", "https://router.project-osrm.org")
	v.SetDefault("osrm.profile", "driving")
	v.SetDefault("osrm.timeout", "10s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("kafka.topic_prefix", "ambulance.")
	v.SetDefault("kafka.dial_timeout", "30s")

	v.SetDefault("export.format", "json")
	v.SetDefault("export.destination", "local")
	v.SetDefault("export.output_path", ".")
	v.SetDefault("export.output_folder", "export")
	v.SetDefault("export.limit", 1000)

	v.SetDefault("replay.steps_per_segment", 20)
	v.SetDefault("replay.interval", "1s")
	v.SetDefault("replay.speed", "40km/h")
}

// LoadConfig reads cfgFile (or ./ambulance.yaml when empty) into a validated
// Config. A missing default file is not an error; defaults and environment
// variables prefixed AMBULANCE_ still apply.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("ambulance")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ambulance")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
