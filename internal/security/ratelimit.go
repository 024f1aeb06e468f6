package security

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"emotionquest/internal/utils"
)

// RateLimiter implements a simple fixed-window token bucket per client
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	clock    utils.Clock

	// TrustProxyHeaders keys clients by X-Forwarded-For / X-Real-IP.
	// Only set it when a reverse proxy in front overwrites those headers.
	TrustProxyHeaders bool
}

type visitor struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter allowing rate requests per
// window for each client. A rate of zero disables limiting.
func NewRateLimiter(rate int, window time.Duration, clock utils.Clock) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		clock:    clock,
	}
}

// Allow checks if a request from client should be allowed
func (rl *RateLimiter) Allow(client string) bool {
	if rl.rate <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	v, exists := rl.visitors[client]
	if !exists || now.Sub(v.lastRefill) >= rl.window {
		v = &visitor{tokens: rl.rate, lastRefill: now}
		rl.visitors[client] = v
	}

	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

// Run drops idle clients every interval until ctx is done
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for client, v := range rl.visitors {
		if now.Sub(v.lastRefill) > rl.window*2 {
			delete(rl.visitors, client)
		}
	}
}

// visitorCount returns the number of tracked clients
func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// ClientKey returns the key a request is limited under
func (rl *RateLimiter) ClientKey(r *http.Request) string {
	return GetClientIP(r, rl.TrustProxyHeaders)
}

// GetClientIP extracts the client IP from the request. Forwarding headers are
// read only when trustProxy is set, and then only their first hop.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
