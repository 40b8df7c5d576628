package echoapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	newLimiter := func(perSecond float64) *rateLimiter {
		rl := newRateLimiter(perSecond, 1)
		rl.now = func() time.Time { return now }
		rl.lastSweep = now
		return rl
	}

	t.Run("disabled", func(t *testing.T) {
		rl := newLimiter(0)
		for i := 0; i < 5; i++ {
			assert.True(t, rl.Allow("p1"))
		}
		assert.Equal(t, 0, rl.size())
	})

	t.Run("one bucket per key", func(t *testing.T) {
		rl := newLimiter(0.001)
		assert.True(t, rl.Allow("p1"))
		assert.False(t, rl.Allow("p1"))
		assert.True(t, rl.Allow("p2"))
		assert.Equal(t, 2, rl.size())
	})

	t.Run("idle limiters are swept", func(t *testing.T) {
		rl := newLimiter(0.001)
		start := now
		defer func() { now = start }()

		rl.Allow("p1")
		rl.Allow("p2")

		now = start.Add(limiterIdleTTL / 2)
		rl.Allow("p2")
		assert.Equal(t, 2, rl.size(), "no sweep before the TTL")

		now = start.Add(limiterIdleTTL + time.Second)
		rl.Allow("p3")
		assert.Equal(t, 2, rl.size(), "p1 dropped, p2 kept")

		rl.mu.Lock()
		_, p1 := rl.visitors["p1"]
		_, p2 := rl.visitors["p2"]
		rl.mu.Unlock()
		assert.False(t, p1)
		assert.True(t, p2)
	})
}
