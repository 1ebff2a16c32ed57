// Package ratelimit gates per-connection message volume. Once a connection
// exceeds its budget it stays muted for the rest of its session; the caller
// gets a one-time signal so it can log the breach exactly once.
package ratelimit

import "golang.org/x/time/rate"

type Limiter struct {
	lim     *rate.Limiter
	tripped bool
}

// New allows perSecond sustained messages with a burst of the same size.
func New(perSecond float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether the next message may pass. first is true only on the
// call that trips the limiter.
func (l *Limiter) Allow() (ok, first bool) {
	if l.tripped {
		return false, false
	}
	if !l.lim.Allow() {
		l.tripped = true
		return false, true
	}
	return true, false
}

// Tripped reports whether the connection has ever exceeded its budget.
func (l *Limiter) Tripped() bool { return l.tripped }
