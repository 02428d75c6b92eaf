package worker

import (
	"context"
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "vcdb"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// A different dataset has its own bucket
	if err := limiter.Wait(ctx, "pcdb"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "vcdb"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst consumed; immediate follow-up is rejected
	if limiter.Allow("vcdb") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// The other dataset is unaffected
	if !limiter.Allow("pcdb") {
		t.Errorf("expected allow for other dataset")
	}
}

func TestLimiter_SetDatasetRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default

	// Strict limit for one slow legacy connection
	limiter.SetDatasetRate("vcdb", 0.1, 1)

	if !limiter.Allow("vcdb") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("vcdb") {
		t.Errorf("second request should fail")
	}

	// Other dataset still fast
	if !limiter.Allow("pcdb") {
		t.Errorf("other dataset should pass")
	}
}
