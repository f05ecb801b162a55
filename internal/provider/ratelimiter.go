package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces upstream calls with a token bucket so each adapter
// stays inside its API's free-tier quota. CoinGecko's demo key allows
// roughly 8 calls per minute; Yahoo tolerates about 10 before it
// starts returning 429s.
type RateLimiter struct {
	mu          sync.Mutex
	tokens      int
	burst       int
	refillEvery time.Duration
	lastRefill  time.Time
}

// NewRateLimiter creates a limiter that starts with a full bucket of
// burst tokens and regains one every refillEvery.
func NewRateLimiter(burst int, refillEvery time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:      burst,
		burst:       burst,
		refillEvery: refillEvery,
		lastRefill:  time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled. The
// caller's per-fetch timeout bounds how long a starved adapter can
// hold its branch open.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.refillEvery):
		}
	}
}

func (r *RateLimiter) refill() {
	elapsed := time.Since(r.lastRefill)
	regained := int(elapsed / r.refillEvery)
	if regained > 0 {
		r.tokens += regained
		if r.tokens > r.burst {
			r.tokens = r.burst
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(regained) * r.refillEvery)
	}
}
