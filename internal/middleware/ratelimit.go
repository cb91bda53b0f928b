package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxBuckets bounds the number of tracked IPs.
const maxBuckets = 100_000

// RateLimiter throttles clients per IP with a token bucket apiece. The map
// surface is public, so the limiter guards anonymous map traffic as much as
// authenticated edits.
type RateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	rate    int
	burst   int
}

// bucket represents a per-IP token bucket for rate limiting.
type bucket struct {
	tokens     int
	lastFill   time.Time
	ratePerSec int
	burst      int
}

func (b *bucket) allow() bool {
	now := time.Now()
	elapsed := now.Sub(b.lastFill).Seconds()
	refill := int(elapsed * float64(b.ratePerSec))

	if refill > 0 {
		b.tokens += refill
		if b.tokens > b.burst {
			b.tokens = b.burst
		}

		b.lastFill = now
	}

	if b.tokens > 0 {
		b.tokens--

		return true
	}

	return false
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec sustained requests
// with the given burst. Stale buckets are evicted in the background until ctx
// is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    ratePerSec,
		burst:   burst,
	}
	go rl.startCleanup(ctx)

	return rl
}

// startCleanup drops buckets idle longer than maxAge.
func (rl *RateLimiter) startCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	const maxAge = 10 * time.Minute

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.buckets {
				if now.Sub(b.lastFill) > maxAge {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Handler returns the gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// c.ClientIP() is safe from X-Forwarded-For spoofing because
		// SetTrustedProxies(nil) in router.go disables proxy header trust.
		ip := c.ClientIP()

		rl.mu.Lock()
		b, ok := rl.buckets[ip]
		if !ok {
			// Reject new IPs when the bucket table is full.
			if len(rl.buckets) >= maxBuckets {
				rl.mu.Unlock()
				respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

				return
			}

			b = &bucket{
				tokens:     rl.burst,
				lastFill:   time.Now(),
				ratePerSec: rl.rate,
				burst:      rl.burst,
			}
			rl.buckets[ip] = b
		}

		allowed := b.allow()
		rl.mu.Unlock()

		if !allowed {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
