package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter rate-limits analysis requests per remote address. Analysis
// fans out to a paid inference API, so a runaway client is a billing problem
// as well as a load problem.
type clientLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	perMinute int
}

func newClientLimiter(perMinute int) *clientLimiter {
	return &clientLimiter{
		limiters:  make(map[string]*rate.Limiter),
		perMinute: perMinute,
	}
}

func (l *clientLimiter) limiterFor(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[addr]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.limiters[addr] = limiter
	}
	return limiter
}

// wrap applies the limit to a handler. A zero per-minute rate disables
// limiting entirely.
func (l *clientLimiter) wrap(next http.HandlerFunc) http.HandlerFunc {
	if l.perMinute <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !l.limiterFor(host).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again shortly")
			return
		}
		next(w, r)
	}
}
