package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 4096

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

const maxTrackedIPs = 10000

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{m: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (l *ipLimiter) allow(r *http.Request) bool {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[ip]
	if !ok {
		if len(l.m) >= maxTrackedIPs {
			l.m = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.m[ip] = lim
	}
	return lim.Allow()
}
