package http

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/ticket-synth/internal/auth"
	"github.com/spec-kit/ticket-synth/internal/config"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// ClientRateLimiter keeps one token bucket per authenticated client, falling
// back to the remote IP for anonymous callers. Buckets idle long enough to
// have refilled are dropped, since a fresh bucket behaves the same.
type ClientRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientBucket
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter returns nil when limiting is disabled.
func NewClientRateLimiter(cfg config.RateLimitConfig) *ClientRateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	interval := time.Minute / time.Duration(cfg.RequestsPerMinute)
	idle := interval * time.Duration(burst)
	if idle < time.Minute {
		idle = time.Minute
	}
	return &ClientRateLimiter{
		limiters: make(map[string]*clientBucket),
		every:    rate.Every(interval),
		burst:    burst,
		idleTTL:  idle,
		now:      time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *ClientRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	l.sweep(now)
	bucket, ok := l.limiters[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = bucket
	}
	bucket.lastSeen = now
	l.mu.Unlock()
	return bucket.limiter.AllowN(now, 1)
}

// Len reports how many client buckets are tracked.
func (l *ClientRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// sweep drops idle buckets at most once per idle period. Callers hold mu.
func (l *ClientRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for key, bucket := range l.limiters {
		if now.Sub(bucket.lastSeen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
}

// Handle rejects requests over the client budget with 429.
func (l *ClientRateLimiter) Handle(c *fiber.Ctx) error {
	if l == nil {
		return c.Next()
	}
	key := c.IP()
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.ClientID != auth.AnonymousClientID {
		key = principal.ClientID
	}
	if !l.Allow(key) {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(1/float64(l.every)))))
		return apperrors.NewTooManyRequests("generation rate limit exceeded")
	}
	return c.Next()
}
