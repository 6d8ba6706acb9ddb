package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aurorains/insurance-platform/pkg/problem"
)

// RateLimiter provides in-memory per-IP rate limiting. Single-instance
// deployments only; a shared limiter would need to move into Redis alongside
// the session store.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // max requests
	window   time.Duration // time window
	stopCh   chan struct{}
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// StartWithContext ties Stop to context cancellation.
func (rl *RateLimiter) StartWithContext(ctx context.Context) {
	go func() {
		<-ctx.Done()
		rl.Stop()
	}()
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, times := range rl.requests {
				var valid []time.Time
				for _, t := range times {
					if now.Sub(t) < rl.window {
						valid = append(valid, t)
					}
				}
				if len(valid) == 0 {
					delete(rl.requests, ip)
				} else {
					rl.requests[ip] = valid
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) isAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

// Middleware returns the rate limiting handler.
// NOTE: mount AFTER chi's RealIP middleware, which safely sets RemoteAddr
// from X-Forwarded-For behind trusted proxies. Never read the forwarding
// headers directly; clients can spoof them.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r.RemoteAddr)

		if !rl.isAllowed(ip) {
			w.Header().Set("Retry-After", "60")
			problem.Write(w, http.StatusTooManyRequests, "Rate Limit Exceeded",
				"Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from a RemoteAddr, handling bracketed IPv6.
func clientIP(remoteAddr string) string {
	ip := remoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		if strings.Count(ip, ":") > 1 {
			if bracketIdx := strings.LastIndex(ip, "]:"); bracketIdx != -1 {
				ip = ip[1:bracketIdx]
			}
		} else {
			ip = ip[:idx]
		}
	}
	return ip
}
