package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter throttles backend-bound requests per client address.
// A client idle long enough for its bucket to refill is forgotten.
type clientLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*limitedClient
	lastSweep time.Time
}

type limitedClient struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// newClientLimiter returns nil, which allows everything, when perMinute <= 0.
func newClientLimiter(perMinute float64, burst int) *clientLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	idle := time.Duration(float64(burst) / perMinute * float64(time.Minute))
	if idle < time.Minute {
		idle = time.Minute
	}
	return &clientLimiter{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		clients: make(map[string]*limitedClient),
	}
}

func (l *clientLimiter) allow(addr string) bool {
	if l == nil {
		return true
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	now := l.now()

	l.mu.Lock()
	c, ok := l.clients[host]
	if !ok {
		l.sweepLocked(now)
		c = &limitedClient{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[host] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.lim.AllowN(now, 1)
}

func (l *clientLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for host, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idle {
			delete(l.clients, host)
		}
	}
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again shortly")
			return
		}
		next(w, r)
	}
}
