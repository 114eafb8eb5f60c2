// Package lifecycle holds the process-wide drain flag read by /health.
package lifecycle

import "sync/atomic"

var draining atomic.Bool

// BeginShutdown marks the process as draining. /health reports
// shutting-down from then on.
func BeginShutdown() {
	draining.Store(true)
}

// Resume clears the drain flag.
func Resume() {
	draining.Store(false)
}

// ShuttingDown reports whether BeginShutdown has been called since the last Resume.
func ShuttingDown() bool {
	return draining.Load()
}
