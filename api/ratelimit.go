package api

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// ipLimiter applies a token bucket per client IP to the account endpoints.
// Buckets refill continuously; stale buckets are pruned on the way through.
type ipLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	rate     float64 // tokens per second
	maxIdle  time.Duration
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newIPLimiter(burst int, refill time.Duration) *ipLimiter {
	if burst <= 0 {
		burst = 1
	}
	if refill <= 0 {
		refill = time.Second
	}
	return &ipLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(burst),
		rate:     float64(burst) / refill.Seconds(),
		maxIdle:  10 * time.Minute,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[ip]
	if !ok {
		l.prune(now)
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[ip] = b
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	b.lastSeen = now
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *ipLimiter) prune(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.maxIdle {
			delete(l.buckets, ip)
		}
	}
}

// RateLimit wraps a handler with the per-IP limiter.
func RateLimit(burst int, refill time.Duration) func(http.Handler) http.Handler {
	limiter := newIPLimiter(burst, refill)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiter.allow(ip) {
				respondError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
