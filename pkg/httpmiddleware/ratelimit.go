package httpmiddleware

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client sliding window limiter.
type RateLimitConfig struct {
	// Max requests allowed per window.
	Max int
	// Window duration.
	Window time.Duration
	// KeyFunc derives the limiter key from a request. Defaults to the
	// client IP.
	KeyFunc func(*http.Request) string
}

// window tracks request counts for the sliding window computation: the
// previous window's count is weighted by its remaining overlap with the
// sliding window ending now.
type window struct {
	prevCount float64
	prevStart time.Time
	currCount float64
	currStart time.Time
}

type limiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	windows map[string]*window
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiter{cfg: cfg, windows: make(map[string]*window)}
}

func (l *limiter) allow(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.windows[key]
	if !found {
		w = &window{currStart: now}
		l.windows[key] = w
	}

	if now.Sub(w.currStart) >= l.cfg.Window {
		w.prevCount, w.prevStart = w.currCount, w.currStart
		w.currCount, w.currStart = 0, now.Truncate(l.cfg.Window)
		if now.Sub(w.prevStart) >= 2*l.cfg.Window {
			w.prevCount = 0
		}
	}

	overlap := 1.0 - now.Sub(w.currStart).Seconds()/l.cfg.Window.Seconds()
	if overlap < 0 {
		overlap = 0
	}
	effective := w.prevCount*overlap + w.currCount
	resetAt = w.currStart.Add(l.cfg.Window)

	if effective >= float64(l.cfg.Max) {
		return 0, resetAt, false
	}

	w.currCount++
	remaining = int(float64(l.cfg.Max) - effective - 1)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

func (l *limiter) evictStale(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if now.Sub(w.currStart) >= 2*l.cfg.Window {
			delete(l.windows, key)
		}
	}
}

// RateLimit enforces a per-key sliding window limit. Exceeding it yields 429
// with a JSON body; every response carries X-RateLimit-* headers. This
// variant never evicts idle keys; prefer RateLimitWithCleanup on servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return limitMiddleware(newLimiter(cfg))
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that drops
// idle keys every two windows. The goroutine exits when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * l.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evictStale(now)
			}
		}
	}()
	return limitMiddleware(l)
}

func limitMiddleware(l *limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.allow(l.cfg.KeyFunc(r), time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := time.Until(resetAt)
				if retryAfter < 0 {
					retryAfter = 0
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP picks the client address from X-Forwarded-For, X-Real-IP, or
// RemoteAddr, in that order.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
