package httpapi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Buckets idle longer than limiterIdle are dropped; a full bucket after that
// long behaves the same as a fresh one.
const (
	limiterIdle  = 10 * time.Minute
	limiterSweep = time.Minute
)

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	mu        sync.Mutex
	m         map[string]*clientBucket
	r         rate.Limit
	b         int
	now       func() time.Time
	lastSweep time.Time
}

func NewClientLimiter(reqPerSec float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		m:   make(map[string]*clientBucket),
		r:   rate.Limit(reqPerSec),
		b:   burst,
		now: time.Now,
	}
}

func (cl *ClientLimiter) limiterFor(client string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	if cb, ok := cl.m[client]; ok {
		cb.lastSeen = now
		return cb.lim
	}
	if now.Sub(cl.lastSweep) >= limiterSweep {
		cl.sweepLocked(now)
	}
	cb := &clientBucket{lim: rate.NewLimiter(cl.r, cl.b), lastSeen: now}
	cl.m[client] = cb
	return cb.lim
}

func (cl *ClientLimiter) sweepLocked(now time.Time) {
	for client, cb := range cl.m {
		if now.Sub(cb.lastSeen) > limiterIdle {
			delete(cl.m, client)
		}
	}
	cl.lastSweep = now
}

func (cl *ClientLimiter) clients() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.m)
}

func (cl *ClientLimiter) Allow(client string) bool {
	return cl.limiterFor(client).Allow()
}

// RateLimit answers 429 once a client has used up its bucket. A nil limiter disables the check.
func RateLimit(cl *ClientLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if cl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cl.Allow(clientIP(r)) {
				WriteError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
