package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket pacing outbound calls to the hydromet API, so
// the worker fan-out cannot hammer the public endpoints.
type Limiter struct {
	mu     sync.Mutex
	tokens float64
	cap    float64
	refill float64 // tokens per second
	last   time.Time
}

// New creates a limiter allowing refillPerSec sustained calls with bursts
// up to capacity.
func New(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		tokens: capacity,
		cap:    capacity,
		refill: refillPerSec,
		last:   time.Now(),
	}
}

// Allow consumes one token if available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.top(time.Now())
	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// Wait blocks until a token can be consumed or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.top(time.Now())
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.refill * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// top refills the bucket for the time elapsed since the last call.
func (l *Limiter) top(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	if elapsed <= 0 {
		return
	}
	l.tokens += elapsed * l.refill
	if l.tokens > l.cap {
		l.tokens = l.cap
	}
	l.last = now
}
