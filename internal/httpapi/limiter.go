package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepLen = 4096
)

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter rate-limits per client IP. A limit <= 0 lets every request
// through.
type ClientLimiter struct {
	mu sync.Mutex
	m  map[string]*clientEntry
	r  rate.Limit
	b  int
}

func NewClientLimiter(reqPerSec float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		m: make(map[string]*clientEntry),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

// Configure replaces the limit. Existing buckets are dropped, so every
// client starts with a full burst under the new limit.
func (cl *ClientLimiter) Configure(reqPerSec float64, burst int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.r = rate.Limit(reqPerSec)
	cl.b = burst
	clear(cl.m)
}

func (cl *ClientLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.r <= 0 {
		return nil
	}

	if len(cl.m) >= limiterSweepLen {
		for k, e := range cl.m {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(cl.m, k)
			}
		}
	}

	e, ok := cl.m[key]
	if !ok {
		e = &clientEntry{lim: rate.NewLimiter(cl.r, cl.b)}
		cl.m[key] = e
	}
	e.lastSeen = now
	return e.lim
}

func (cl *ClientLimiter) Allow(key string) bool {
	lim := cl.limiterFor(key, time.Now())
	return lim == nil || lim.Allow()
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr can sometimes be just a host
		host = r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the per-client budget with 429. A nil
// limiter disables limiting.
func RateLimit(cl *ClientLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if cl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cl.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
