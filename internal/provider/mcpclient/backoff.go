// Package mcpclient implements the two remote-MCP provider variants —
// STDIO subprocess supervisor and Streamable HTTP client — behind the
// common provider.Provider interface.
package mcpclient

import (
	"math/rand/v2"
	"time"
)

const (
	// backoffInitial is the restart/reconnect delay after the first failure.
	backoffInitial = 500 * time.Millisecond

	// backoffMax caps the exponential doubling.
	backoffMax = 30 * time.Second

	// backoffJitterFraction is applied symmetrically around the computed
	// delay, so concurrently-failing providers don't retry in lockstep.
	backoffJitterFraction = 0.2

	// maxConsecutiveFailures is the number of back-to-back restart/connect
	// failures a provider tolerates before it is marked permanently
	// Unhealthy and the supervisor gives up.
	maxConsecutiveFailures = 5
)

// nextBackoff doubles cur, capped at backoffMax. Called with 0 it returns
// backoffInitial.
func nextBackoff(cur time.Duration) time.Duration {
	if cur <= 0 {
		return backoffInitial
	}
	next := cur * 2
	if next > backoffMax {
		return backoffMax
	}
	return next
}

// jittered returns d perturbed by up to ±backoffJitterFraction, so that
// many providers backing off at once don't all wake and retry in the same
// instant.
func jittered(d time.Duration) time.Duration {
	jitterRange := time.Duration(float64(d) * backoffJitterFraction)
	if jitterRange <= 0 {
		return d
	}
	delta := time.Duration(rand.Int64N(int64(2*jitterRange+1))) - jitterRange
	return d + delta
}
