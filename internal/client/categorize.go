package client

import (
	"context"
	"errors"
	"net"

	"github.com/kjstillabower/current-weather-service/internal/circuitbreaker"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as the lookupFailuresTotal label.
const (
	ErrorCategoryTimeout       ErrorCategory = "timeout"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryCircuitOpen   ErrorCategory = "circuit_open"
	ErrorCategoryParsing       ErrorCategory = "parsing"
	ErrorCategoryNoCandidate   ErrorCategory = "no_candidate"
	ErrorCategoryInvalidConfig ErrorCategory = "invalid_config"
	ErrorCategoryUnknown       ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCategoryTimeout
	}

	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		return ErrorCategoryCircuitOpen
	case errors.Is(err, ErrNoCandidate):
		return ErrorCategoryNoCandidate
	case errors.Is(err, ErrParse):
		return ErrorCategoryParsing
	case errors.Is(err, ErrNetwork):
		return ErrorCategoryNetwork
	case errors.Is(err, ErrInvalidConfig):
		return ErrorCategoryInvalidConfig
	}
	return ErrorCategoryUnknown
}
