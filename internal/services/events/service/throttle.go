package service

import (
	"context"

	"golang.org/x/time/rate"

	"touchgrass/internal/services/events/domain"
)

// rateThrottle paces batch writes with a token bucket
// replaces the old inline sleep between successive store writes
type rateThrottle struct {
	lim *rate.Limiter
}

// NewRateThrottle builds a ThrottlePort allowing perSec writes with the given burst
func NewRateThrottle(perSec float64, burst int) domain.ThrottlePort {
	if perSec <= 0 {
		return NopThrottle{}
	}
	if burst < 1 {
		burst = 1
	}
	return &rateThrottle{lim: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Wait implements domain.ThrottlePort
func (t *rateThrottle) Wait(ctx context.Context) error { return t.lim.Wait(ctx) }

// NopThrottle never blocks, useful in tests and for unpaced callers
type NopThrottle struct{}

// Wait implements domain.ThrottlePort
func (NopThrottle) Wait(context.Context) error { return nil }
