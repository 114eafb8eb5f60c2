package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/current-weather-service/internal/client"
	"github.com/kjstillabower/current-weather-service/internal/models"
	"github.com/kjstillabower/current-weather-service/internal/observability"
)

// WeatherService turns a place name into the current hour's weather: geocode,
// take the first candidate, fetch its hourly forecast, pick the current hour.
// It holds no per-request state and is safe for concurrent use.
type WeatherService struct {
	geocoder   client.Geocoder
	forecaster client.Forecaster
	logger     *zap.Logger
	now        func() time.Time
}

// NewWeatherService creates a WeatherService. logger is used when the request
// context carries none; nil disables that fallback.
func NewWeatherService(geocoder client.Geocoder, forecaster client.Forecaster, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		geocoder:   geocoder,
		forecaster: forecaster,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the wall clock used to pick the current hour.
func (s *WeatherService) SetClock(now func() time.Time) {
	s.now = now
}

// Resolve returns the geocoding candidates for name in provider order.
func (s *WeatherService) Resolve(ctx context.Context, name string) ([]models.LocationCandidate, error) {
	candidates, err := s.geocoder.Resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	return candidates, nil
}

// FetchWeather returns the snapshot for the current local hour at the first
// geocoding candidate for name. Errors wrap client.ErrNetwork, client.ErrParse
// or client.ErrNoCandidate.
func (s *WeatherService) FetchWeather(ctx context.Context, name string) (models.WeatherSnapshot, error) {
	logger := observability.LoggerFromContext(ctx, s.logger)
	start := time.Now()
	observability.RecordWeatherQuery(name)

	snap, err := s.fetchWeather(ctx, logger, name)
	if err != nil {
		category := client.CategorizeError(err)
		observability.LookupFailuresTotal.WithLabelValues(string(category)).Inc()
		logger.Debug("weather lookup failed",
			zap.String("location", name),
			zap.String("category", string(category)),
			zap.Error(err))
		return models.WeatherSnapshot{}, err
	}

	observability.ConditionsServedTotal.WithLabelValues(snap.Condition.MetricLabel()).Inc()
	logger.Debug("weather served",
		zap.String("location", name),
		zap.String("condition", snap.Condition.MetricLabel()),
		zap.Duration("duration", time.Since(start)))
	return snap, nil
}

func (s *WeatherService) fetchWeather(ctx context.Context, logger *zap.Logger, name string) (models.WeatherSnapshot, error) {
	candidates, err := s.Resolve(ctx, name)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}
	if len(candidates) == 0 {
		return models.WeatherSnapshot{}, fmt.Errorf("resolve %q: %w", name, client.ErrNoCandidate)
	}
	loc := candidates[0]

	series, err := s.forecaster.GetHourly(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("forecast for %s (%g, %g): %w", loc.Name, loc.Latitude, loc.Longitude, err)
	}
	if err := series.Validate(); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("forecast for %s: %w: %w", loc.Name, client.ErrParse, err)
	}

	target := FormatHour(s.now())
	idx, ok := findHour(series.Time, target)
	if !ok {
		observability.CurrentHourFallbackTotal.Inc()
		logger.Debug("current hour missing from forecast, using first entry",
			zap.String("target", target),
			zap.String("first", series.Time[0]))
	}
	return models.SnapshotAt(series, idx), nil
}

// Lookup is FetchWeather for display layers: any failure is logged and
// reported as nil.
func (s *WeatherService) Lookup(ctx context.Context, name string) *models.WeatherSnapshot {
	snap, err := s.FetchWeather(ctx, name)
	if err != nil {
		observability.LoggerFromContext(ctx, s.logger).Warn("could not fetch weather",
			zap.String("location", name),
			zap.Error(err))
		return nil
	}
	return &snap
}

// Candidates is Resolve for display layers: any failure is logged and
// reported as nil.
func (s *WeatherService) Candidates(ctx context.Context, name string) []models.LocationCandidate {
	candidates, err := s.Resolve(ctx, name)
	if err != nil {
		observability.LookupFailuresTotal.WithLabelValues(string(client.CategorizeError(err))).Inc()
		observability.LoggerFromContext(ctx, s.logger).Warn("could not resolve location",
			zap.String("location", name),
			zap.Error(err))
		return nil
	}
	return candidates
}
