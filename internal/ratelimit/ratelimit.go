package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 10
	DefaultWindow      = 60 * time.Second
)

// Limiter is a mutex-guarded sliding window per identity. State is
// process-local only: never persisted, cleared on restart.
type Limiter struct {
	mu      sync.Mutex
	hits    map[int64][]time.Time
	max     int
	window  time.Duration
	nowFunc func() time.Time
}

func New(max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		hits:    make(map[int64][]time.Time),
		max:     max,
		window:  window,
		nowFunc: time.Now,
	}
}

// Allow prunes timestamps older than the window, records the current
// call and reports whether the identity is within its quota. Rejected
// calls still consume quota, so rapid retry does not evade the limit;
// the (max+1)-th request inside a window is the first rejected one.
func (l *Limiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	cutoff := now.Add(-l.window)

	kept := l.hits[userID][:0]
	for _, t := range l.hits[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.hits[userID] = kept

	return len(kept) <= l.max
}
