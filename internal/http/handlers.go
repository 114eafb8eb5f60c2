package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/current-weather-service/internal/circuitbreaker"
	"github.com/kjstillabower/current-weather-service/internal/client"
	"github.com/kjstillabower/current-weather-service/internal/lifecycle"
	"github.com/kjstillabower/current-weather-service/internal/models"
	"github.com/kjstillabower/current-weather-service/internal/observability"
	"github.com/kjstillabower/current-weather-service/internal/service"
	"github.com/kjstillabower/current-weather-service/internal/traffic"
	"github.com/kjstillabower/current-weather-service/internal/validation"
)

const serviceName = "current-weather-service"

// Version is reported by /health. Overridden at build time with -ldflags.
var Version = "dev"

// HealthConfig holds the thresholds for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
	// BreakerState, when set, reports the upstream circuit breaker. An open
	// breaker marks the service degraded.
	BreakerState func() circuitbreaker.State
}

// LocationLimits bounds the rune length of the {location} path segment.
type LocationLimits struct {
	Min int
	Max int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService   *service.WeatherService
	healthConfig     *HealthConfig
	limits           LocationLimits
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. healthConfig may be nil, in which case
// /health only reports healthy or shutting-down.
func NewHandler(weatherService *service.WeatherService, healthConfig *HealthConfig, limits LocationLimits, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		weatherService: weatherService,
		healthConfig:   healthConfig,
		limits:         limits,
		logger:         logger,
	}
}

// GetWeather handles GET /weather/{location}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	location, ok := h.location(w, r)
	if !ok {
		return
	}

	snap, err := h.weatherService.FetchWeather(r.Context(), location)
	if err != nil {
		if errors.Is(err, client.ErrNoCandidate) {
			traffic.RecordSuccess()
			writeError(w, r, http.StatusNotFound, "LOCATION_NOT_FOUND", "No location matches the given name")
			return
		}
		traffic.RecordError()
		writeUpstreamError(w, r, err)
		return
	}
	traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, snap)
}

type locationsResponse struct {
	Results []models.LocationCandidate `json:"results"`
}

// GetLocations handles GET /locations/{location}. An unknown place yields an
// empty results array.
func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	location, ok := h.location(w, r)
	if !ok {
		return
	}

	candidates, err := h.weatherService.Resolve(r.Context(), location)
	if err != nil {
		traffic.RecordError()
		writeUpstreamError(w, r, err)
		return
	}
	traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, locationsResponse{Results: candidates})
}

// location extracts and validates the {location} path variable, writing a 400
// when it is unusable.
func (h *Handler) location(w http.ResponseWriter, r *http.Request) (string, bool) {
	location, err := validation.ValidateLocation(mux.Vars(r)["location"], h.limits.Min, h.limits.Max)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_LOCATION", err.Error())
		return "", false
	}
	return location, true
}

type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	upstream := "healthy"
	if result.status == "degraded" {
		upstream = "unhealthy"
	}
	body := map[string]interface{}{
		"status":    result.status,
		"service":   serviceName,
		"version":   Version,
		"checks":    map[string]string{"openMeteo": upstream},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil && h.healthConfig.DegradedWindow > 0 {
		window := h.healthConfig.DegradedWindow
		body["traffic"] = map[string]interface{}{
			"window":   window.String(),
			"requests": traffic.RequestCount(window),
			"denied":   traffic.DenialCount(window),
		}
	}
	writeJSON(w, result.statusCode, body)
}

// computeHealthStatus evaluates, in order: shutting-down, open breaker,
// error-rate breach, healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.ShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	if h.healthConfig.BreakerState != nil && h.healthConfig.BreakerState() == circuitbreaker.StateOpen {
		return healthResult{"degraded", http.StatusServiceUnavailable, "circuit_open"}
	}
	if h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		failures, total := traffic.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 && failures*100 >= h.healthConfig.DegradedErrorPct*total {
			return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error body: code, message and the request's
// correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationID(r.Context()),
		},
	})
}

// writeUpstreamError writes a 503 for a failed upstream call. The cause is
// logged at debug and never returned to the caller.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch weather data")
	observability.LoggerFromContext(r.Context(), nil).Debug("upstream error",
		zap.String("category", string(client.CategorizeError(err))),
		zap.Error(err))
}
