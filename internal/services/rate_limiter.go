package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientRateLimiter throttles expensive prediction requests per client IP.
// Idle clients are evicted so the limiter map does not grow unbounded.
type ClientRateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	maxIdle  time.Duration
	lastSeen func() time.Time
}

type clientLimiter struct {
	limiter *rate.Limiter
	seen    time.Time
}

func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients:  make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		maxIdle:  10 * time.Minute,
		lastSeen: time.Now,
	}
}

// Allow reports whether the client may proceed now.
func (rl *ClientRateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.lastSeen()
	rl.evictIdle(now)

	cl, ok := rl.clients[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[clientID] = cl
	}
	cl.seen = now
	return cl.limiter.Allow()
}

func (rl *ClientRateLimiter) evictIdle(now time.Time) {
	for id, cl := range rl.clients {
		if now.Sub(cl.seen) > rl.maxIdle {
			delete(rl.clients, id)
		}
	}
}

// GetStats returns limiter statistics for the admin status endpoint.
func (rl *ClientRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"tracked_clients": len(rl.clients),
		"rate_per_second": float64(rl.rps),
		"burst":           rl.burst,
	}
}
