package http

import (
	"context"
	"sync/atomic"
	"time"
)

// InFlightTracker counts requests currently being served so shutdown can
// drain them.
type InFlightTracker struct {
	n atomic.Int64
}

// Begin counts one request and returns the func that uncounts it.
func (t *InFlightTracker) Begin() (done func()) {
	t.n.Add(1)
	return func() { t.n.Add(-1) }
}

// Count returns the current in-flight count.
func (t *InFlightTracker) Count() int64 {
	return t.n.Load()
}

// WaitForZero polls every checkInterval until the count is zero or ctx ends.
func (t *InFlightTracker) WaitForZero(ctx context.Context, checkInterval time.Duration) error {
	if t.Count() == 0 {
		return nil
	}
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if t.Count() == 0 {
				return nil
			}
		}
	}
}

var globalInFlightTracker = &InFlightTracker{}

// InFlightCount returns the number of requests inside MetricsMiddleware.
func InFlightCount() int64 {
	return globalInFlightTracker.Count()
}

// WaitForInFlight blocks until every request seen by MetricsMiddleware has
// finished or ctx is done.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return globalInFlightTracker.WaitForZero(ctx, checkInterval)
}
