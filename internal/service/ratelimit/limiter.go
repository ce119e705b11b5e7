package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	xhttp "FactPull/pkg/http"

	"github.com/labstack/echo/v4"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// sweepInterval bounds how often idle buckets are scanned for eviction.
const sweepInterval = time.Minute

// Limiter is a per-key token bucket, keyed by client IP when used as API
// middleware. Buckets idle past a full refill cycle are evicted so IP churn
// does not grow the map forever.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*bucket
	lastSweep time.Time
}

func New() *Limiter {
	return &Limiter{m: make(map[string]*bucket), lastSweep: time.Now()}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens -= 1
		return true
	}
	return false
}

// sweepLocked drops buckets whose idle time exceeds a full refill cycle;
// such a bucket is indistinguishable from a fresh one. Caller holds l.mu.
func (l *Limiter) sweepLocked(now time.Time) {
	for k, b := range l.m {
		if now.Sub(b.last) > b.idleTTL() {
			delete(l.m, k)
		}
	}
	l.lastSweep = now
}

func (b *bucket) idleTTL() time.Duration {
	if b.refillRate <= 0 {
		return sweepInterval
	}
	ttl := time.Duration(b.capacity / b.refillRate * float64(time.Second))
	if ttl < sweepInterval {
		ttl = sweepInterval
	}
	return ttl
}

// Middleware rejects requests exceeding requestsPerMinute per client IP with
// 429. Burst is the bucket capacity, allowing short spikes.
func (l *Limiter) Middleware(requestsPerMinute, burst int) echo.MiddlewareFunc {
	refill := float64(requestsPerMinute) / 60.0
	capacity := float64(burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := clientIP(c.Request())
			if !l.Allow(key, capacity, refill) {
				return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the originating client; the rest are proxies
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
