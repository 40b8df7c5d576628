package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiters unused for longer are forgotten
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out one token bucket per player, or per client IP when unauthenticated.
type rateLimiter struct {
	now func() time.Time // mockable

	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	lastSweep time.Time
}

// newRateLimiter allows `perSecond` requests per second with bursts of `burst`. perSecond <= 0 disables limiting.
func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		now:       time.Now,
		limit:     rate.Limit(perSecond),
		burst:     burst,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterIdleTTL {
		rl.prune(now.Add(-limiterIdleTTL))
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// prune drops limiters unused since `before` and returns how many were dropped. rl.mu must be held.
func (rl *rateLimiter) prune(before time.Time) int {
	var n int
	for key, v := range rl.visitors {
		if v.lastSeen.Before(before) {
			delete(rl.visitors, key)
			n++
		}
	}
	return n
}

func (rl *rateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	return rl.get(key).Allow()
}

func (rl *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		key := ctx.RealIP()
		if claims, err := getContextClaims(ctx); err == nil {
			key = "player:" + claims.Subject
		}
		if !rl.Allow(key) {
			return errTooManyRequests
		}
		return next(ctx)
	}
}
