package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

const (
	sweepInterval = time.Minute
	bucketIdleTTL = 10 * time.Minute
)

type limiterStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rps       float64
	burst     float64
	lastSweep time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	return &limiterStore{
		buckets:   make(map[string]*bucket),
		rps:       cfg.RequestsPerSecond,
		burst:     float64(cfg.Burst),
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	b, ok := s.buckets[key]
	if !ok {
		s.buckets[key] = &bucket{tokens: s.burst - 1, lastSeen: now}
		return true
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens += elapsed * s.rps
	if b.tokens > s.burst {
		b.tokens = s.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle past the TTL. Runs inline from allow at
// most once per sweepInterval; callers must hold mu.
func (s *limiterStore) sweep(now time.Time) {
	cutoff := now.Add(-bucketIdleTTL)
	for key, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
	s.lastSweep = now
}

// RateLimit enforces a token-bucket limit per client. Authenticated
// requests are keyed by user id so clients behind a shared NAT do not
// exhaust each other's budget; anonymous requests fall back to the
// remote IP.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newLimiterStore(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if uid, ok := c.Get("user_id").(string); ok && uid != "" {
				key = uid
			}
			if !store.allow(key) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
