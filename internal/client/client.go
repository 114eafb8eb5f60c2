package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/current-weather-service/internal/circuitbreaker"
	"github.com/kjstillabower/current-weather-service/internal/models"
	"github.com/kjstillabower/current-weather-service/internal/observability"
)

// Geocoder resolves a free-text place name to candidate locations.
type Geocoder interface {
	Resolve(ctx context.Context, placeName string) ([]models.LocationCandidate, error)
}

// Forecaster fetches the hourly forecast series for a coordinate.
type Forecaster interface {
	GetHourly(ctx context.Context, latitude, longitude float64) (models.HourlySeries, error)
}

var (
	ErrNetwork       = errors.New("network failure")
	ErrParse         = errors.New("parse failure")
	ErrNoCandidate   = errors.New("no location candidate")
	ErrInvalidConfig = errors.New("invalid client config")
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/dwd-icon"

	endpointGeocoding = "geocoding"
	endpointForecast  = "forecast"
)

// OpenMeteoClient talks to the Open-Meteo geocoding and forecast APIs.
// It implements both Geocoder and Forecaster. Safe for concurrent use.
type OpenMeteoClient struct {
	geocodingURL string
	forecastURL  string
	client       *http.Client
	breaker      *circuitbreaker.CircuitBreaker
}

// NewOpenMeteoClient validates both base URLs and returns a client. A zero
// timeout leaves outbound requests bounded only by the caller's context.
func NewOpenMeteoClient(geocodingURL, forecastURL string, timeout time.Duration) (*OpenMeteoClient, error) {
	if err := checkBaseURL(geocodingURL); err != nil {
		return nil, fmt.Errorf("%w: geocoding url: %v", ErrInvalidConfig, err)
	}
	if err := checkBaseURL(forecastURL); err != nil {
		return nil, fmt.Errorf("%w: forecast url: %v", ErrInvalidConfig, err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}

	return &OpenMeteoClient{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetCircuitBreaker routes every upstream call through cb. Call before use.
func (c *OpenMeteoClient) SetCircuitBreaker(cb *circuitbreaker.CircuitBreaker) {
	c.breaker = cb
}

func checkBaseURL(raw string) error {
	if raw == "" {
		return errors.New("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	if u.RawQuery != "" {
		return errors.New("must not carry a query string")
	}
	return nil
}

// statusError is a non-200 answer from the provider.
type statusError struct {
	endpoint   string
	statusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.endpoint, e.statusCode)
}

// tripsBreaker reports whether err says something about upstream health.
// Transport failures, 429 and 5xx do; other 4xx answers come from a healthy
// upstream rejecting the request.
func tripsBreaker(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.statusCode == http.StatusTooManyRequests || se.statusCode >= 500
	}
	return true
}

// get issues a GET and returns the body of a 200 response.
func (c *OpenMeteoClient) get(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	if c.breaker == nil {
		return c.fetch(ctx, endpoint, rawURL)
	}

	var body []byte
	var rejected error
	err := c.breaker.Call(ctx, func() error {
		b, err := c.fetch(ctx, endpoint, rawURL)
		if err != nil && !tripsBreaker(err) {
			rejected = err
			return nil
		}
		body = b
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "circuit_open").Inc()
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, endpoint, err)
	}
	if rejected != nil {
		return nil, rejected
	}
	return body, err
}

func (c *OpenMeteoClient) fetch(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%w: build %s request: %w", ErrNetwork, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.UpstreamDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s request: %w", ErrNetwork, endpoint, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.UpstreamDuration.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: %w", ErrNetwork, &statusError{endpoint: endpoint, statusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrNetwork, endpoint, err)
	}
	return body, nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
