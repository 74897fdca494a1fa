package kit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("first two hits must pass")
	}
	if l.Allow("a") {
		t.Fatalf("third hit inside the window must be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a") {
		t.Fatalf("hit after the window must pass")
	}
}

func TestRateLimiter_MiddlewareFallsBackToIP(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	h := l.Middleware(func(*http.Request) string { return "" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	do := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("10.0.0.1"); code != http.StatusNoContent {
		t.Fatalf("first status=%d", code)
	}
	if code := do("10.0.0.1, 172.16.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", code)
	}
	if code := do("10.0.0.2"); code != http.StatusNoContent {
		t.Fatalf("other ip status=%d", code)
	}
}

func TestMetricsAuth(t *testing.T) {
	h := MetricsAuth("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		authz string
		want  int
	}{
		{"", http.StatusForbidden},
		{"Bearer nope", http.StatusForbidden},
		{"Bearer s3cret", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if tc.authz != "" {
			req.Header.Set("Authorization", tc.authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("authz=%q status=%d want %d", tc.authz, rec.Code, tc.want)
		}
	}
}

func TestRateLimiter_ForgetsIdleKeys(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewRateLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("session-%d", i))
	}
	if n := l.Len(); n != 100 {
		t.Fatalf("keys=%d, want 100", n)
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("fresh") {
		t.Fatalf("fresh key must pass")
	}
	if n := l.Len(); n != 1 {
		t.Fatalf("keys after window=%d, want 1", n)
	}
}
