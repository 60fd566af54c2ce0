package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────────────
// Token-bucket rate limiter
// ──────────────────────────────────────────────────────────────────────────────

// bucket tracks the token balance for one client IP.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// limiter holds per-IP buckets.
type limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   float64 // bucket capacity
}

func newLimiter(rps int) *limiter {
	burst := float64(rps)
	if burst < 5 {
		burst = 5
	}
	return &limiter{
		buckets: make(map[string]*bucket),
		rate:    float64(rps),
		burst:   burst,
	}
}

func (l *limiter) allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastRefill: time.Now()}
		l.buckets[key] = b
	}
	l.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit enforces a per-IP token bucket of rps requests per second.
// Clients over the limit receive 429 Too Many Requests. A club tracker sees
// tiny traffic, so the limiter exists mainly to blunt misbehaving scripts.
func RateLimit(rps int) gin.HandlerFunc {
	l := newLimiter(rps)

	// Evict idle buckets so the map cannot grow without bound.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-10 * time.Minute)
			l.mu.Lock()
			for ip, b := range l.buckets {
				b.mu.Lock()
				stale := b.lastRefill.Before(cutoff)
				b.mu.Unlock()
				if stale {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}
