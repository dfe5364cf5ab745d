// Package breaker wraps sony/gobreaker with project defaults for
// outbound delivery gateways.
package breaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// New returns a circuit breaker tuned for gateway calls: it opens after
// 60% failures over at least 3 requests and probes again after a minute.
func New(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
}
