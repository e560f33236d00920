// Package health implements the sliding-window error-rate tracker that
// derives a provider's HealthState: a pure bookkeeping structure over a
// clockwork.Clock, with no I/O of its own.
package health

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State is one of the four health states a provider can be in.
type State string

const (
	StateStarting State = "starting"
	StateHealthy  State = "healthy"
	StateDegraded State = "degraded"
	StateUnhealthy State = "unhealthy"
)

// WindowSize is the number of most-recent outcomes the tracker retains.
const WindowSize = 20

// MinSamples is the minimum number of recorded outcomes before the
// tracker leaves StateStarting.
const MinSamples = 5

const (
	healthyThreshold = 0.05
	degradedThreshold = 0.50
)

// outcome is a single timestamped success/failure sample.
type outcome struct {
	at      time.Time
	success bool
}

// Tracker is a sliding window of the most recent WindowSize call outcomes.
// It is safe for concurrent use: a provider's actor goroutine records
// outcomes while any number of readers may call State/Snapshot.
//
// History is never reset on reconnect; a flapping provider self-quarantines
// by staying Unhealthy until enough fresh successes roll the failures out
// of the window. This is an explicit design choice, not an oversight.
type Tracker struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	samples []outcome // ring, oldest first, capped at WindowSize
}

// New creates a Tracker using the real wall clock.
func New() *Tracker {
	return NewWithClock(clockwork.NewRealClock())
}

// NewWithClock creates a Tracker using the given clock, so tests can control
// sample timestamps deterministically.
func NewWithClock(clock clockwork.Clock) *Tracker {
	return &Tracker{clock: clock, samples: make([]outcome, 0, WindowSize)}
}

// Record appends a call outcome to the window, evicting the oldest sample
// once the window is full.
func (t *Tracker) Record(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, outcome{at: t.clock.Now(), success: success})
	if len(t.samples) > WindowSize {
		t.samples = t.samples[len(t.samples)-WindowSize:]
	}
}

// Snapshot returns the current sample count and failure ratio.
func (t *Tracker) Snapshot() (count int, failureRatio float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count = len(t.samples)
	if count == 0 {
		return 0, 0
	}

	failures := 0
	for _, s := range t.samples {
		if !s.success {
			failures++
		}
	}
	return count, float64(failures) / float64(count)
}

// ForceUnhealthy overwrites the window with synthetic failures so State
// reports StateUnhealthy immediately, regardless of how many real samples
// have been recorded so far. It exists for a provider that will never get
// another chance to record a real outcome — a subprocess or connection
// supervisor that has exhausted its restart attempts and given up — where
// waiting for MinSamples real failures to accumulate would leave the
// provider stuck reporting StateStarting forever.
func (t *Tracker) ForceUnhealthy() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = t.samples[:0]
	now := t.clock.Now()
	for i := 0; i < WindowSize; i++ {
		t.samples = append(t.samples, outcome{at: now, success: false})
	}
}

// State derives the current HealthState from the sliding window:
//
//	fewer than MinSamples samples -> Starting
//	failure ratio < 5%            -> Healthy
//	failure ratio 5%-50%          -> Degraded
//	failure ratio > 50%           -> Unhealthy
func (t *Tracker) State() State {
	count, ratio := t.Snapshot()
	if count < MinSamples {
		return StateStarting
	}
	switch {
	case ratio < healthyThreshold:
		return StateHealthy
	case ratio <= degradedThreshold:
		return StateDegraded
	default:
		return StateUnhealthy
	}
}
