package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/current-weather-service/internal/circuitbreaker"
	"github.com/kjstillabower/current-weather-service/internal/client"
	"github.com/kjstillabower/current-weather-service/internal/config"
	httphandler "github.com/kjstillabower/current-weather-service/internal/http"
	"github.com/kjstillabower/current-weather-service/internal/lifecycle"
	"github.com/kjstillabower/current-weather-service/internal/observability"
	"github.com/kjstillabower/current-weather-service/internal/service"
)

const breakerComponent = "open_meteo"

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	omClient, err := client.NewOpenMeteoClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.UpstreamTimeout)
	if err != nil {
		logger.Fatal("open-meteo client", zap.Error(err))
	}

	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
	}
	if cb := newBreaker(cfg, logger); cb != nil {
		omClient.SetCircuitBreaker(cb)
		healthConfig.BreakerState = cb.State
	}

	weatherService := service.NewWeatherService(omClient, omClient, logger)
	if len(cfg.TrackedLocations) > 0 {
		observability.SetTrackedLocations(cfg.TrackedLocations)
	}

	handler := httphandler.NewHandler(weatherService, healthConfig,
		httphandler.LocationLimits{Min: cfg.LocationMinLength, Max: cfg.LocationMaxLength}, logger)
	router := httphandler.NewRouter(handler, logger, newLimiter(cfg), cfg.RequestTimeout)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("geocoding_url", cfg.GeocodingURL),
			zap.String("forecast_url", cfg.ForecastURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.BeginShutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry flush: %v\n", err)
	}
	logger.Info("shutdown complete")
}

// newBreaker returns the upstream circuit breaker, or nil when disabled.
// Transitions are logged and exported as metrics.
func newBreaker(cfg *config.Config, logger *zap.Logger) *circuitbreaker.CircuitBreaker {
	if !cfg.CircuitBreakerEnabled {
		return nil
	}
	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Component:        breakerComponent,
		OnStateChange: func(from, to circuitbreaker.State) {
			observability.RecordCircuitBreakerTransition(breakerComponent, from.String(), to.String(), int(to))
			logger.Warn("circuit breaker transition",
				zap.String("component", breakerComponent),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	observability.CircuitBreakerState.WithLabelValues(cb.Component()).Set(float64(circuitbreaker.StateClosed))
	logger.Info("circuit breaker enabled",
		zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold),
		zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	return cb
}

func newLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
}
