package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements fixed-window rate limiting per key.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int           // requests per window
	period  time.Duration // window length
	done    chan struct{}
}

type window struct {
	remaining int
	openedAt  time.Time
}

// New creates a new Limiter allowing limit requests per period for each key.
func New(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		done:    make(chan struct{}),
	}

	// Start background cleanup
	go l.cleanup()

	return l
}

// Close stops the background cleanup goroutine.
func (l *Limiter) Close() {
	close(l.done)
}

// Allow checks if a request for the given key is allowed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.openedAt) >= l.period {
		w = &window{
			remaining: l.limit,
			openedAt:  now,
		}
		l.windows[key] = w
	}

	if w.remaining > 0 {
		w.remaining--
		return true
	}

	return false
}

// cleanup periodically removes windows that have been stale for a while so
// the map does not grow with one entry per client IP forever.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.Sub(w.openedAt) > 2*l.period {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}
