package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. All keys share the rate and burst.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*client
	limit rate.Limit
	burst int
	now   func() time.Time
}

// New allows rps requests per second per key with bursts of up to burst.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		m:     make(map[string]*client),
		limit: rate.Limit(rps),
		burst: burst,
		now:   time.Now,
	}
}

// Allow reports whether one more request for key fits its bucket.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	c, ok := l.m[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.limit, l.burst)}
		l.m[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()
	return c.lim.AllowN(now, 1)
}

// Sweep drops keys untouched for longer than idle. A bucket idle that long
// has refilled, so dropping it loses nothing.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, c := range l.m {
		if c.lastSeen.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}
