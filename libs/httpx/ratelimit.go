package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-client token bucket kept in process memory. It suits single
// instance deployments; use RedisRateLimiter when several gateways run side by side.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows limit requests per window for each client, refilled evenly.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idleTTL:  3 * window,
		visitors: map[string]*visitor{},
		now:      time.Now,
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientKey(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.retryAfter().Seconds())+1))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastGC) > rl.idleTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.idleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastGC = now
	}

	v := rl.visitors[key]
	if v == nil {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) retryAfter() time.Duration {
	if rl.limit <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(rl.limit))
}

func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
