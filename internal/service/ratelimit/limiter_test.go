package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1", 5, 0) {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if l.Allow("10.0.0.1", 5, 0) {
		t.Fatal("request beyond burst should be denied")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("10.0.0.1", 1, 0) {
		t.Fatal("first client should be allowed")
	}
	if l.Allow("10.0.0.1", 1, 0) {
		t.Fatal("first client should be exhausted")
	}
	if !l.Allow("10.0.0.2", 1, 0) {
		t.Fatal("second client must have its own bucket")
	}
}

func TestIdleBucketsAreEvicted(t *testing.T) {
	l := New()
	l.Allow("10.0.0.1", 5, 1)
	l.Allow("10.0.0.2", 5, 1)

	l.mu.Lock()
	l.m["10.0.0.1"].last = time.Now().Add(-10 * time.Minute)
	l.lastSweep = time.Now().Add(-2 * sweepInterval)
	l.mu.Unlock()

	// any call past the sweep interval triggers eviction of idle entries
	l.Allow("10.0.0.3", 5, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m["10.0.0.1"]; ok {
		t.Fatal("bucket idle past its refill cycle should be evicted")
	}
	if _, ok := l.m["10.0.0.2"]; !ok {
		t.Fatal("recently used bucket should survive the sweep")
	}
	if _, ok := l.m["10.0.0.3"]; !ok {
		t.Fatal("new bucket should exist after the sweep")
	}
}

func TestClientIPUsesFirstForwardedHop(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 172.16.0.1")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Fatalf("clientIP = %q, want first forwarded hop", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:4321"
	if got := clientIP(r); got != "192.0.2.1" {
		t.Fatalf("clientIP = %q, want remote addr host", got)
	}
}
