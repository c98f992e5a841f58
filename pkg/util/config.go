package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	OSRM    OSRMConfig    `mapstructure:"osrm"`
	Matrix  MatrixConfig  `mapstructure:"matrix"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
}

type OSRMConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Profile string `mapstructure:"profile" validate:"required"`
	// Polyline sends coordinates as polyline(...) instead of lon,lat pairs.
	Polyline     bool          `mapstructure:"polyline"`
	TableTimeout time.Duration `mapstructure:"table_timeout" validate:"gt=0"`
	RouteTimeout time.Duration `mapstructure:"route_timeout" validate:"gt=0"`
	RouteRetries int           `mapstructure:"route_retries" validate:"gte=1"`
	RetryDelay   time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	MinInterval  time.Duration `mapstructure:"min_interval" validate:"gte=0"`
}

type MatrixConfig struct {
	BatchSize          int     `mapstructure:"batch_size" validate:"gte=1"`
	Workers            int     `mapstructure:"workers" validate:"gte=1"`
	UnreachableMinutes float64 `mapstructure:"unreachable_minutes" validate:"gt=0"`
	FailureMinutes     float64 `mapstructure:"failure_minutes" validate:"gt=0"`
	MinRegionSize      int     `mapstructure:"min_region_size" validate:"gte=1"`
	TargetRegion       string  `mapstructure:"target_region"`
	PortMethod         string  `mapstructure:"port_method" validate:"oneof=route table"`
}

type DatasetConfig struct {
	MinesFile      string `mapstructure:"mines_file" validate:"required"`
	PortsFile      string `mapstructure:"ports_file"`
	LonColumn      string `mapstructure:"lon_column" validate:"required"`
	LatColumn      string `mapstructure:"lat_column" validate:"required"`
	IDColumn       string `mapstructure:"id_column"`
	RegionColumn   string `mapstructure:"region_column"`
	PortNameColumn string `mapstructure:"port_name_column"`
	PortLonColumn  string `mapstructure:"port_lon_column"`
	PortLatColumn  string `mapstructure:"port_lat_column"`
}

type OutputConfig struct {
	File        string `mapstructure:"file" validate:"required"`
	Compression string `mapstructure:"compression" validate:"oneof=deflate bzip2 store"`
}

type ServerConfig struct {
	Port      int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	Archive   string        `mapstructure:"archive"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int           `mapstructure:"burst" validate:"gte=0"`
}

// SetDefaults registers the values the batch jobs were tuned with against a
// local OSRM instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("osrm.base_url", "http://127.0.0.1:5000")
	v.SetDefault("osrm.profile", "driving")
	v.SetDefault("osrm.polyline", false)
	v.SetDefault("osrm.table_timeout", "60s")
	v.SetDefault("osrm.route_timeout", "15s")
	v.SetDefault("osrm.route_retries", 3)
	v.SetDefault("osrm.retry_delay", "1s")
	v.SetDefault("osrm.min_interval", "0s")

	v.SetDefault("matrix.batch_size", 300)
	v.SetDefault("matrix.workers", 1)
	v.SetDefault("matrix.unreachable_minutes", 360000.0)
	v.SetDefault("matrix.failure_minutes", 999999.0)
	v.SetDefault("matrix.min_region_size", 2)
	v.SetDefault("matrix.target_region", "III")
	v.SetDefault("matrix.port_method", "route")

	v.SetDefault("dataset.mines_file", "minas_ll.csv")
	v.SetDefault("dataset.ports_file", "puertos.csv")
	v.SetDefault("dataset.lon_column", "Longitud")
	v.SetDefault("dataset.lat_column", "Latitud")
	v.SetDefault("dataset.id_column", "IdFaena")
	v.SetDefault("dataset.region_column", "RegionFaena")
	v.SetDefault("dataset.port_name_column", "portName")
	v.SetDefault("dataset.port_lon_column", "longitude")
	v.SetDefault("dataset.port_lat_column", "latitude")

	v.SetDefault("output.file", "matrix_chile_mega.npz")
	v.SetDefault("output.compression", "deflate")

	v.SetDefault("server.port", 6060)
	v.SetDefault("server.archive", "matrix_chile_mega.npz")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.rate_limit", 50.0)
	v.SetDefault("server.burst", 100)
}

// ReadConfig loads path, or config.{yaml,toml,json} from ./data/ or the
// working directory when path is empty. A missing default config file is not
// an error; environment variables prefixed TRABAJO_ override every key.
func ReadConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix("TRABAJO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./data/")
		v.AddConfigPath(".")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, WrapErrorf(err, ErrBadParamInput, "unable to decode config")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, WrapErrorf(err, ErrBadParamInput, "invalid config")
	}
	return &cfg, nil
}

// Load builds the config of one command: shared defaults, then the command's
// own defaults, then the config file and the environment.
func Load(path string, defaults map[string]any) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	if err := ReadConfig(v, path); err != nil {
		return nil, err
	}
	return LoadConfig(v)
}
