package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces automated page visits. Wait blocks until the politeness
// interval since the previous visit has elapsed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// PolitenessLimiter enforces a fixed minimum delay between actions. The delay
// is a hard requirement of the crawl, not a tuning knob: the source site
// rate-limits automation that visits detail pages back to back.
type PolitenessLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewPolitenessLimiter(delay time.Duration) *PolitenessLimiter {
	return &PolitenessLimiter{delay: delay}
}

func (l *PolitenessLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastAction)
	if elapsed < l.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.delay - elapsed):
		}
	}

	l.lastAction = time.Now()
	return nil
}
