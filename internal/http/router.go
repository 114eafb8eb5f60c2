package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/current-weather-service/internal/observability"
)

// NewRouter wires the service routes. Correlation and metrics middleware
// apply everywhere; the lookup routes also get the rate limiter and the
// request deadline.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	for prefix, handle := range map[string]http.HandlerFunc{
		"/weather":   h.GetWeather,
		"/locations": h.GetLocations,
	} {
		sub := router.PathPrefix(prefix).Subrouter()
		sub.Use(RateLimitMiddleware(limiter))
		sub.Use(TimeoutMiddleware(requestTimeout))
		sub.HandleFunc("/{location}", handle).Methods("GET")
	}
	return router
}
