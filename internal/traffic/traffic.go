// Package traffic keeps a short rolling log of request outcomes for the
// /health degraded check.
package traffic

import (
	"sync"
	"time"
)

// Outcome classifies a finished request.
type Outcome uint8

const (
	// Success is a request answered from upstream data (2xx, or a definitive 404).
	Success Outcome = iota
	// Failure is a request that could not be answered because of upstream trouble.
	Failure
	// Denied is a request rejected by the rate limiter.
	Denied
)

// retention bounds how far back the log reaches regardless of query window.
const retention = 5 * time.Minute

var defaultTracker = NewTracker()

// RecordSuccess records a Success on the process-wide tracker.
func RecordSuccess() { defaultTracker.Record(Success) }

// RecordError records a Failure on the process-wide tracker.
func RecordError() { defaultTracker.Record(Failure) }

// RecordDenied records a Denied on the process-wide tracker.
func RecordDenied() { defaultTracker.Record(Denied) }

// RequestCount returns all outcomes within window on the process-wide tracker.
func RequestCount(window time.Duration) int { return defaultTracker.RequestCount(window) }

// DenialCount returns denials within window on the process-wide tracker.
func DenialCount(window time.Duration) int { return defaultTracker.DenialCount(window) }

// ErrorRate returns (failures, successes+failures) within window on the
// process-wide tracker.
func ErrorRate(window time.Duration) (failures, total int) { return defaultTracker.ErrorRate(window) }

// Reset clears the process-wide tracker. For tests.
func Reset() { defaultTracker.Reset() }

type entry struct {
	at      time.Time
	outcome Outcome
}

// Tracker is an append-only, time-ordered outcome log pruned to the last
// five minutes. The zero value is not usable; call NewTracker.
type Tracker struct {
	mu      sync.Mutex
	entries []entry
	now     func() time.Time
}

// NewTracker returns an empty Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Record appends o at the current time.
func (t *Tracker) Record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.entries = append(t.entries, entry{at: now, outcome: o})
	t.pruneLocked(now)
}

// RequestCount returns the number of outcomes of any kind within window.
func (t *Tracker) RequestCount(window time.Duration) int {
	counts := t.count(window)
	return counts[Success] + counts[Failure] + counts[Denied]
}

// DenialCount returns the number of Denied outcomes within window.
func (t *Tracker) DenialCount(window time.Duration) int {
	return t.count(window)[Denied]
}

// ErrorRate returns the failure count and the success+failure count within
// window. Denials are not part of either number.
func (t *Tracker) ErrorRate(window time.Duration) (failures, total int) {
	counts := t.count(window)
	return counts[Failure], counts[Success] + counts[Failure]
}

// Reset drops every recorded outcome.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

func (t *Tracker) count(window time.Duration) [3]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var counts [3]int
	cutoff := t.now().Add(-window)
	for i := len(t.entries) - 1; i >= 0 && !t.entries[i].at.Before(cutoff); i-- {
		counts[t.entries[i].outcome]++
	}
	return counts
}

// pruneLocked drops entries older than retention. Caller holds mu.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-retention)
	i := 0
	for i < len(t.entries) && t.entries[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.entries = append(t.entries[:0], t.entries[i:]...)
	}
}
