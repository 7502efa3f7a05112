package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Pacer spaces out successive operations by a fixed interval with optional
// jitter. It is safe for concurrent use; with a zero interval it never blocks.
type Pacer struct {
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
}

// NewPacer creates a Pacer. Jitter outside [0, 1] is clamped.
func NewPacer(interval time.Duration, jitter float64) *Pacer {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return &Pacer{interval: interval, jitter: jitter}
}

// Wait sleeps for the configured interval (plus jitter) or until the context
// is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	d := p.interval
	if p.jitter > 0 {
		// Random factor in [-jitter, +jitter] of the interval.
		factor := (rand.Float64()*2 - 1) * p.jitter
		d += time.Duration(float64(p.interval) * factor)
		if d < 0 {
			d = 0
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
