// internal/httpserver/ratelimit.go
//
// Per-IP request limiting: a token bucket per client address, sized so a
// client gets `requests` requests per `window` with the full window available
// as burst. Idle limiters are swept periodically so the map stays bounded.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	done    chan struct{}
	once    sync.Once
}

func newIPLimiter(requests int, window time.Duration) *ipLimiter {
	if requests <= 0 {
		requests = 1
	}
	l := &ipLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		done:    make(chan struct{}),
	}
	go l.sweep(window)
	return l
}

// stop terminates the sweep goroutine. Idempotent.
func (l *ipLimiter) stop() {
	l.once.Do(func() { close(l.done) })
}

// get returns the limiter for key, creating it on first sight.
func (l *ipLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok {
		e.lastAccess = time.Now()
		return e.limiter
	}
	e := &limiterEntry{
		limiter:    rate.NewLimiter(l.limit, l.burst),
		lastAccess: time.Now(),
	}
	l.entries[key] = e
	return e.limiter
}

// sweep drops limiters idle for more than two windows until stop is called.
func (l *ipLimiter) sweep(window time.Duration) {
	tk := time.NewTicker(window)
	defer tk.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-tk.C:
			cutoff := time.Now().Add(-2 * window)
			l.mu.Lock()
			for key, e := range l.entries {
				if e.lastAccess.Before(cutoff) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// middleware rejects clients that exhaust their bucket with a 429 JSON error.
func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientIP(r)).Allow() {
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
