package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitThrottlesToConfiguredRate(t *testing.T) {
	limiter := New(600) // 10/second, fast enough for a test
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 200*time.Millisecond {
		t.Fatalf("expected throttling across 3 calls, elapsed only %v", elapsed)
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	limiter := New(1) // 1/minute, so a second call must block
	ctx := context.Background()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(cancelCtx); err == nil {
		t.Fatalf("expected context deadline error, got nil")
	}
}
