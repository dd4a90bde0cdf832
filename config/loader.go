package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// DefaultPaths are searched in order when LoadAppConfig is called without paths.
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// Environment variables that override the file.
const (
	EnvAPIKey     = "AT_API_KEY"
	EnvBaseURL    = "AT_BASE_URL"
	EnvLogLevel   = "AT_LOG_LEVEL"
	EnvServerPort = "AT_SERVER_PORT"
)

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 16181},
		API: APIConfig{
			BaseURL:   "https://api.at.govt.nz/v2",
			TimeoutMS: 10000,
		},
		Feeds: FeedsConfig{
			TripUpdatesPath:      "/public/realtime/tripupdates",
			VehiclePositionsPath: "/public/realtime/vehiclelocations",
		},
		Merge:   MergeConfig{JoinBy: "tripId"},
		Poller:  PollerConfig{ReadIntervalMS: 30000},
		Logging: LoggingConfig{Level: "info"},
		Siri:    SiriConfig{ProducerRef: "AT"},
	}
}

// LoadAppConfig loads, overrides and validates the configuration and stores
// it in Config. A .env file in the working directory is loaded first. A
// missing config file is not an error; the defaults are used instead.
func LoadAppConfig(paths ...string) error {
	cfg, err := Load(paths...)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// Load is LoadAppConfig without the global.
func Load(paths ...string) (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}

	if len(paths) == 0 {
		paths = DefaultPaths
	}

	cfg := Default()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	if err := applyEnv(&cfg); err != nil {
		return AppConfig{}, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvServerPort, err)
		}
		cfg.Server.Port = port
	}
	return nil
}
