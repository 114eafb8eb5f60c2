//go:build integration
// +build integration

// Package testhelpers builds live Open-Meteo clients and services for tests
// run with -tags integration.
package testhelpers

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/kjstillabower/current-weather-service/internal/client"
	"github.com/kjstillabower/current-weather-service/internal/service"
)

// IntegrationTestConfig holds the endpoints used by live tests.
type IntegrationTestConfig struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
}

// GetIntegrationConfig reads endpoint overrides from the environment. Skips
// the test unless OPEN_METEO_INTEGRATION=1, since the tests hit the public API.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	if os.Getenv("OPEN_METEO_INTEGRATION") != "1" {
		t.Skip("OPEN_METEO_INTEGRATION not set, skipping live Open-Meteo test")
	}

	cfg := IntegrationTestConfig{
		GeocodingURL: client.DefaultGeocodingURL,
		ForecastURL:  client.DefaultForecastURL,
		Timeout:      10 * time.Second,
	}
	if v := os.Getenv("GEOCODING_API_URL"); v != "" {
		cfg.GeocodingURL = v
	}
	if v := os.Getenv("FORECAST_API_URL"); v != "" {
		cfg.ForecastURL = v
	}
	return cfg
}

// SetupIntegrationClient creates a live Open-Meteo client.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) *client.OpenMeteoClient {
	t.Helper()
	c, err := client.NewOpenMeteoClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.Timeout)
	if err != nil {
		t.Fatalf("NewOpenMeteoClient() error = %v", err)
	}
	return c
}

// SetupIntegrationService creates a WeatherService over a live client,
// logging through the test.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) *service.WeatherService {
	t.Helper()
	c := SetupIntegrationClient(t, cfg)
	return service.NewWeatherService(c, c, zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)))
}
