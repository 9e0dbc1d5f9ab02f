package invoicing

import (
	"testing"
	"time"
)

func TestRateLimiterSpacesCalls(t *testing.T) {
	limiter := NewRateLimiter(100)

	start := time.Now()
	for i := 0; i < 5; i++ {
		limiter.Wait()
	}
	elapsed := time.Since(start)

	// 5 calls at 100 rps need at least 4 intervals of 10ms.
	if elapsed < 40*time.Millisecond {
		t.Fatalf("elapsed %v", elapsed)
	}
}

func TestRateLimiterZeroRateFallsBack(t *testing.T) {
	limiter := NewRateLimiter(0)
	if limiter.interval != time.Second {
		t.Fatalf("interval %v", limiter.interval)
	}
}
