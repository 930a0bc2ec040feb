// Package config loads service configuration from defaults, an optional
// YAML file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CacheNone     = "none"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Config is the root configuration passed explicitly to every component.
type Config struct {
	Logger   obs.LoggerConfig `mapstructure:"logger"`
	ORS      ORSConfig        `mapstructure:"ors"`
	Server   ServerConfig     `mapstructure:"server"`
	Dataset  DatasetConfig    `mapstructure:"dataset"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Postgres PostgresConfig   `mapstructure:"postgres"`
	Redis    RedisConfig      `mapstructure:"redis"`

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool `mapstructure:"-"`
}

// ORSConfig holds the OpenRouteService client settings.
// There is no default API key.
type ORSConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Profile           string        `mapstructure:"profile"`
	MatrixTimeout     time.Duration `mapstructure:"matrix_timeout"`
	DirectionsTimeout time.Duration `mapstructure:"directions_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	StaticDir         string        `mapstructure:"static_dir"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// DatasetConfig locates the build artifacts. Registry is an optional
// override of the embedded node registry.
type DatasetConfig struct {
	Dir         string `mapstructure:"dir"`
	File        string `mapstructure:"file"`
	DistanceCSV string `mapstructure:"distance_csv"`
	DurationCSV string `mapstructure:"duration_csv"`
	Registry    string `mapstructure:"registry"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// SetDefaults registers default values so the service runs with a minimal config.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "hospital-route-service")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("ors.profile", "driving-car")
	v.SetDefault("ors.matrix_timeout", 60*time.Second)
	v.SetDefault("ors.directions_timeout", 30*time.Second)
	v.SetDefault("ors.max_attempts", 4)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.static_dir", "frontend")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 45*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("dataset.dir", "data")
	v.SetDefault("dataset.file", "dataset_with_matrix.json")
	v.SetDefault("dataset.distance_csv", "distance_matrix.csv")
	v.SetDefault("dataset.duration_csv", "duration_matrix.csv")
	v.SetDefault("dataset.registry", "")

	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.ttl", 24*time.Hour)
}

// Load builds a Config. cfgFile may be empty, in which case ./config.yaml is
// used when present.
func Load(cfgFile string) (*Config, error) {
	envLoaded := godotenv.Load() == nil

	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by deployments and the .env file.
	_ = v.BindEnv("ors.api_key", "HRS_ORS_API_KEY", "ORS_API_KEY")
	_ = v.BindEnv("postgres.url", "HRS_POSTGRES_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "HRS_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("server.port", "HRS_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	cfg, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.EnvFileLoaded = envLoaded
	return cfg, nil
}

// FromViper unmarshals and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings needed by every command. Credentials are checked
// separately by the commands that need them.
func (c *Config) Validate() error {
	var errs []error

	if c.ORS.MatrixTimeout <= 0 {
		errs = append(errs, errors.New("ors.matrix_timeout must be positive"))
	}
	if c.ORS.DirectionsTimeout <= 0 {
		errs = append(errs, errors.New("ors.directions_timeout must be positive"))
	}
	if c.ORS.MaxAttempts < 1 {
		errs = append(errs, errors.New("ors.max_attempts must be at least 1"))
	}
	if strings.TrimSpace(c.Dataset.Dir) == "" || strings.TrimSpace(c.Dataset.File) == "" {
		errs = append(errs, errors.New("dataset.dir and dataset.file are required"))
	} else if err := domain.ValidateArtifactNames(c.Dataset.File, c.Dataset.DistanceCSV, c.Dataset.DurationCSV); err != nil {
		errs = append(errs, fmt.Errorf("dataset: %w", err))
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required when cache.backend=redis"))
		}
	case CachePostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("postgres.url is required when cache.backend=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of none, redis, postgres", c.Cache.Backend))
	}
	if c.Cache.Backend != CacheNone && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}

	return errors.Join(errs...)
}

// Validate requires the provider credential.
func (c ORSConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("ORS_API_KEY is required")
	}
	return nil
}
