package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/current-weather-service/internal/client"
)

// ErrConfigNotFound is returned by Load when config/{ENV_NAME}.yaml is missing.
var ErrConfigNotFound = errors.New("config file not found")

// Config holds service configuration loaded from YAML, .env and the environment.
type Config struct {
	ServerPort string

	GeocodingURL    string
	ForecastURL     string
	UpstreamTimeout time.Duration // 0 disables the per-call timeout

	RequestTimeout time.Duration

	LocationMinLength int
	LocationMaxLength int

	RateLimitRPS   int
	RateLimitBurst int

	CircuitBreakerEnabled          bool
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration

	DegradedWindow   time.Duration
	DegradedErrorPct int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	TrackedLocations []string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	OpenMeteo struct {
		GeocodingURL string `yaml:"geocoding_url"`
		ForecastURL  string `yaml:"forecast_url"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"open_meteo"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Validation struct {
		LocationMinLength int `yaml:"location_min_length"`
		LocationMaxLength int `yaml:"location_max_length"`
	} `yaml:"validation"`

	Reliability struct {
		RateLimitRPS                   int    `yaml:"rate_limit_rps"`
		RateLimitBurst                 int    `yaml:"rate_limit_burst"`
		CircuitBreakerEnabled          bool   `yaml:"circuit_breaker_enabled"`
		CircuitBreakerFailureThreshold int    `yaml:"circuit_breaker_failure_threshold"`
		CircuitBreakerSuccessThreshold int    `yaml:"circuit_breaker_success_threshold"`
		CircuitBreakerTimeout          string `yaml:"circuit_breaker_timeout"`
	} `yaml:"reliability"`

	Lifecycle struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"lifecycle"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Metrics struct {
		TrackedLocations []string `yaml:"tracked_locations"`
	} `yaml:"metrics"`
}

// Load reads .env (if present), then config/{ENV_NAME}.yaml (default dev)
// relative to the working directory, then applies GEOCODING_API_URL,
// FORECAST_API_URL and SERVER_PORT overrides. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
	}

	cfg := fromFile(&fc)
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present: public
// Open-Meteo endpoints and the same defaults Load falls back to.
func Default() *Config {
	cfg := fromFile(&fileConfig{})
	applyEnv(cfg)
	return cfg
}

func fromFile(fc *fileConfig) *Config {
	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(fc.Server.Port)
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.GeocodingURL = strings.TrimSpace(fc.OpenMeteo.GeocodingURL)
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = client.DefaultGeocodingURL
	}
	cfg.ForecastURL = strings.TrimSpace(fc.OpenMeteo.ForecastURL)
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = client.DefaultForecastURL
	}
	cfg.UpstreamTimeout = parseDurationOrZero(fc.OpenMeteo.Timeout, 10*time.Second)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 15*time.Second)

	cfg.LocationMinLength = positiveOr(fc.Validation.LocationMinLength, 1)
	cfg.LocationMaxLength = positiveOr(fc.Validation.LocationMaxLength, 100)

	cfg.RateLimitRPS = positiveOr(fc.Reliability.RateLimitRPS, 100)
	cfg.RateLimitBurst = positiveOr(fc.Reliability.RateLimitBurst, 250)
	cfg.CircuitBreakerEnabled = fc.Reliability.CircuitBreakerEnabled
	cfg.CircuitBreakerFailureThreshold = positiveOr(fc.Reliability.CircuitBreakerFailureThreshold, 5)
	cfg.CircuitBreakerSuccessThreshold = positiveOr(fc.Reliability.CircuitBreakerSuccessThreshold, 2)
	cfg.CircuitBreakerTimeout = parseDuration(fc.Reliability.CircuitBreakerTimeout, 30*time.Second)

	cfg.DegradedWindow = parseDuration(fc.Lifecycle.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = positiveOr(fc.Lifecycle.DegradedErrorPct, 50)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.TrackedLocations = fc.Metrics.TrackedLocations
	return cfg
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("GEOCODING_API_URL")); v != "" {
		cfg.GeocodingURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FORECAST_API_URL")); v != "" {
		cfg.ForecastURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVER_PORT")); v != "" {
		cfg.ServerPort = v
	}
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// parseDuration parses s, returning defaultVal when s is empty, malformed or
// not positive.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses s, returning defaultVal when s is empty or
// malformed. Zero and negative values are returned as is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate checks endpoint URLs and timeouts. A request timeout that cannot
// cover one upstream call is raised to the upstream timeout plus a second.
func validate(cfg *Config) error {
	for name, raw := range map[string]string{"open_meteo.geocoding_url": cfg.GeocodingURL, "open_meteo.forecast_url": cfg.ForecastURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
		if u.RawQuery != "" {
			return fmt.Errorf("%s must not carry a query string, got %q", name, raw)
		}
	}
	if cfg.UpstreamTimeout < 0 {
		return fmt.Errorf("open_meteo.timeout must not be negative, got %v", cfg.UpstreamTimeout)
	}
	if cfg.UpstreamTimeout > 0 && cfg.RequestTimeout <= cfg.UpstreamTimeout {
		cfg.RequestTimeout = cfg.UpstreamTimeout + time.Second
	}
	if cfg.LocationMinLength > cfg.LocationMaxLength {
		return fmt.Errorf("validation.location_min_length %d exceeds location_max_length %d", cfg.LocationMinLength, cfg.LocationMaxLength)
	}
	return nil
}
