// internal/httpserver/server.go
//
// HTTP server wiring for the game server.
// Responsibilities:
//   - Router + middleware (CORS, request IDs, panic recovery, request logs).
//   - Public endpoints: "/", "/health", leaderboard and settings under /api.
//   - Admin endpoints under /api/admin (bearer JWT).
//   - The realtime websocket endpoint "/ws", bridged to the session hub.
//
// Notes:
//   - Timeout and the JSON content type apply to /api only; /ws is a
//     long-lived hijacked connection.
//   - Error bodies are always {"error":"<code>"}.

package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mptetris/tetris-server/internal/auth"
	"github.com/mptetris/tetris-server/internal/hub"
	"github.com/mptetris/tetris-server/internal/leaderboard"
)

type Options struct {
	ClientOrigin string  // "*" allows any origin
	DefaultMode  string  // mode for score posts that omit one
	RanksRate    float64 // POST /api/ranks and admin login, per IP per second
	RanksBurst   int
}

// Server bundles the router and the services it exposes.
type Server struct {
	r        *chi.Mux
	hub      *hub.Hub
	ranks    *leaderboard.Service
	admin    *auth.Admin
	opts     Options
	limits   *ipLimiter
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(h *hub.Hub, ranks *leaderboard.Service, admin *auth.Admin, opts Options) *Server {
	if opts.RanksRate <= 0 {
		opts.RanksRate = 2
	}
	if opts.RanksBurst <= 0 {
		opts.RanksBurst = 5
	}
	s := &Server{
		r:      chi.NewRouter(),
		hub:    h,
		ranks:  ranks,
		admin:  admin,
		opts:   opts,
		limits: newIPLimiter(rate.Limit(opts.RanksRate), opts.RanksBurst),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.With(jsonContentType).Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"tetris-server","endpoints":["/health","/ws","GET /api/ranks","POST /api/ranks","GET /api/settings","/api/admin/*"]}`))
	})
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)
		s.mountRanks(r)
		s.mountAdmin(r)
	})

	s.r.Get("/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Str("reqId", chimw.GetReqID(r.Context())).
				Msg("http")
		}()
		next.ServeHTTP(ww, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.opts.ClientOrigin
		if origin == "*" {
			origin = r.Header.Get("Origin")
		}
		if origin != "" {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Score-Secret")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin admits non-browser clients (no Origin header), the
// configured client origin, and same-host pages.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	switch {
	case origin == "", s.opts.ClientOrigin == "*", origin == s.opts.ClientOrigin:
		return true
	}
	host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	return host == r.Host
}
