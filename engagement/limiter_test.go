package engagement

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiterBlocksAfterBurst(t *testing.T) {
	limiter := newIPLimiter(rate.Every(time.Hour), 2, time.Minute)
	ip := "203.0.113.10"

	if !limiter.allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if !limiter.allow(ip) {
		t.Fatalf("expected second request to be allowed")
	}
	if limiter.allow(ip) {
		t.Fatalf("expected third request to be blocked")
	}
}

func TestLimiterRefills(t *testing.T) {
	limiter := newIPLimiter(rate.Every(100*time.Millisecond), 1, time.Minute)
	ip := "203.0.113.20"

	if !limiter.allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.allow(ip) {
		t.Fatalf("expected second request to be blocked")
	}

	time.Sleep(150 * time.Millisecond)
	if !limiter.allow(ip) {
		t.Fatalf("expected request after refill to be allowed")
	}
}

func TestLimiterIsPerKey(t *testing.T) {
	limiter := newIPLimiter(rate.Every(time.Hour), 1, time.Minute)

	if !limiter.allow("203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !limiter.allow("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.allow("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after burst")
	}
}

func TestLimiterSweepsIdleKeys(t *testing.T) {
	limiter := newIPLimiter(rate.Every(time.Hour), 1, 50*time.Millisecond)
	limiter.allow("203.0.113.40")
	limiter.allow("203.0.113.41")

	time.Sleep(80 * time.Millisecond)
	limiter.allow("203.0.113.42")
	if got := limiter.size(); got != 1 {
		t.Errorf("size = %d, want 1 after sweep", got)
	}
}
