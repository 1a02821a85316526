// internal/httpserver/routes_ranks.go
//
// Leaderboard and public settings routes.
//   - GET  /api/ranks?limit=N → {"data":[{nickname,mode,score,updatedAt}]}
//   - POST /api/ranks         → submit a finished game
//   - GET  /api/settings      → current clear threshold and accepted modes
//
// Score posts carry the shared secret in X-Score-Secret or the body. The
// anomaly check needs the submitter's live connection id (sessionId);
// anomalous or unbacked scores get a bare {"status":"ignored"} so the
// heuristic is not revealed.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mptetris/tetris-server/internal/leaderboard"
)

func (s *Server) mountRanks(r chi.Router) {
	r.Get("/ranks", s.handleListRanks)
	r.Post("/ranks", s.handleSubmitRank)
	r.Get("/settings", s.handleSettings)
}

func (s *Server) handleListRanks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.ranks.Top(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list ranks")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

type submitRankReq struct {
	Nickname  string  `json:"nickname"`
	Score     float64 `json:"score"`
	Mode      string  `json:"mode"`
	Secret    string  `json:"secret"`
	SessionID string  `json:"sessionId"`
}

func (s *Server) handleSubmitRank(w http.ResponseWriter, r *http.Request) {
	if !s.limits.allow(r) {
		writeError(w, http.StatusTooManyRequests, "rate_limited")
		return
	}
	var req submitRankReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	secret := r.Header.Get("X-Score-Secret")
	if secret == "" {
		secret = req.Secret
	}
	mode := req.Mode
	if mode == "" {
		mode = s.opts.DefaultMode
	}

	var ev leaderboard.Evidence
	if req.SessionID != "" {
		score, ok, err := s.hub.LastScore(r.Context(), req.SessionID)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		ev = leaderboard.Evidence{LastScore: score, HasSession: ok}
	}

	res, err := s.ranks.Submit(r.Context(), leaderboard.Submission{
		Nickname: req.Nickname,
		Score:    req.Score,
		Mode:     mode,
		Secret:   secret,
	}, ev)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, leaderboard.ErrAuth):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, leaderboard.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_submission")
	case errors.Is(err, leaderboard.ErrAnomaly):
		log.Info().Err(err).Str("nickname", req.Nickname).Msg("anomalous score ignored")
		writeJSON(w, http.StatusOK, map[string]string{"status": string(leaderboard.StatusIgnored)})
	default:
		log.Error().Err(err).Msg("submit rank")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	n, err := s.hub.Threshold(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clearThreshold": n,
		"modes":          s.ranks.Modes(),
	})
}
