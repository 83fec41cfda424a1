package middleware

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter hands out one token bucket per client IP
type RateLimiter struct {
	clients sync.Map // ip -> *client
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per IP
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(rps),
		burst: burst,
		now:   time.Now,
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	v, ok := rl.clients.Load(ip)
	if !ok {
		v, _ = rl.clients.LoadOrStore(ip, &client{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	c := v.(*client)
	c.lastSeen.Store(rl.now().UnixNano())
	return c.limiter
}

// EvictIdle forgets clients not seen for longer than idle and returns how
// many were removed
func (rl *RateLimiter) EvictIdle(idle time.Duration) int {
	cutoff := rl.now().Add(-idle).UnixNano()
	removed := 0
	rl.clients.Range(func(key, value any) bool {
		if value.(*client).lastSeen.Load() < cutoff {
			rl.clients.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	n := 0
	rl.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Handler rejects requests over the limit with 429
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port; RealIP upstream has already resolved proxies
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
