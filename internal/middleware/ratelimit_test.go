package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_ReusesBucketPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	first := rl.getLimiter("10.0.0.1")
	second := rl.getLimiter("10.0.0.1")
	if first != second {
		t.Fatal("same IP must map to the same bucket")
	}
	if other := rl.getLimiter("10.0.0.2"); other == first {
		t.Fatal("distinct IPs must not share a bucket")
	}
}

func TestRateLimiter_SweepDropsOnlyIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	rl.mu.Lock()
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-visitorTTL - time.Minute)
	rl.mu.Unlock()

	rl.sweepIdle(time.Now().Add(-visitorTTL))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, exists := rl.visitors["10.0.0.1"]; exists {
		t.Fatal("idle bucket survived the sweep")
	}
	if _, exists := rl.visitors["10.0.0.2"]; !exists {
		t.Fatal("active bucket was swept")
	}
}
