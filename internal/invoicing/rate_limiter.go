package invoicing

import (
	"sync"
	"time"
)

// RateLimiter spaces requests so the invoicing API sees at most the
// configured rate. Callers block in Wait until their scheduled slot.
type RateLimiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(requestsPerSecond)}
}

func (r *RateLimiter) Wait() {
	r.mu.Lock()
	now := time.Now()
	slot := now
	if r.next.After(now) {
		slot = r.next
	}
	r.next = slot.Add(r.interval)
	r.mu.Unlock()

	if sleep := time.Until(slot); sleep > 0 {
		time.Sleep(sleep)
	}
}
