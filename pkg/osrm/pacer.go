package osrm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates outgoing requests. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer allows one request per minInterval, with the first one immediate.
// A non-positive interval disables pacing.
func NewPacer(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}
