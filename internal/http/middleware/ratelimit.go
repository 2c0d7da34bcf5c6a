package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"blogeditor/internal/metrics"
)

// limiterIdleTTL is how long a client must be quiet before its bucket may be dropped.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per client IP. Buckets of clients idle for
// limiterIdleTTL are evicted once they have refilled, so a dropped bucket is
// indistinguishable from a fresh one.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	group string
	clock clockwork.Clock

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter allows rps events per second with the given burst, per client.
// group labels the rate limit metrics.
func NewRateLimiter(rps float64, burst int, group string) *RateLimiter {
	clock := clockwork.NewRealClock()
	return &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		group:     group,
		clock:     clock,
		limiters:  make(map[string]*clientLimiter),
		lastSweep: clock.Now(),
	}
}

// allow takes one token from key's bucket.
func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		l.sweepLocked(now)
	}

	cl, ok := l.limiters[key]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.lim.AllowN(now, 1)
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	for key, cl := range l.limiters {
		if now.Sub(cl.lastSeen) >= limiterIdleTTL && cl.lim.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Handler rejects over-limit requests with 429 through the global error handler.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if key == "" {
			key = "unknown"
		}
		if !l.allow(key) {
			metrics.RateLimitRejected.WithLabelValues(l.group).Inc()
			c.Set(fiber.HeaderRetryAfter, "1")
			return fiber.ErrTooManyRequests
		}
		metrics.RateLimitAllowed.WithLabelValues(l.group).Inc()
		return c.Next()
	}
}
