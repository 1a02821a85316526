// internal/httpserver/routes_admin.go
//
// Privileged routes. Login trades the admin password for a bearer token;
// everything else requires it.
//   - POST /api/admin/login               {password} → {token, expiresAt}
//   - GET  /api/admin/sessions            → {"data":{connId: session}}
//   - PUT  /api/admin/threshold           {threshold} → {threshold}
//   - POST /api/admin/sessions/{id}/boom  → {removed, row}

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mptetris/tetris-server/internal/auth"
)

func (s *Server) mountAdmin(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(s.admin))
			r.Get("/sessions", s.handleAdminSessions)
			r.Put("/threshold", s.handleAdminThreshold)
			r.Post("/sessions/{id}/boom", s.handleAdminBoom)
		})
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limits.allow(r) {
		writeError(w, http.StatusTooManyRequests, "rate_limited")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !s.admin.CheckPassword(req.Password) {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	tok, exp, err := s.admin.IssueWithExpiry()
	if err != nil {
		log.Error().Err(err).Msg("sign admin token")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "expiresAt": exp.UTC()})
}

func (s *Server) handleAdminSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.hub.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": sessions})
}

func (s *Server) handleAdminThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold int `json:"threshold"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Threshold <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_threshold")
		return
	}
	if err := s.hub.SetThreshold(r.Context(), req.Threshold); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"threshold": req.Threshold})
}

func (s *Server) handleAdminBoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	row, removed, err := s.hub.Boom(r.Context(), id, "admin")
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed, "row": row})
}
