// internal/leaderboard/leaderboard.go
//
// Score submission validation and the best-score-per-(nickname, mode)
// leaderboard.
//
// A submission passes, in order:
//   1. secret check (constant time)            -> ErrAuth
//   2. nickname / mode / score shape            -> ErrValidation
//   3. anomaly check against the live session   -> ErrAnomaly
//   4. atomic conditional upsert                -> ErrPersistence
//
// A valid score that does not beat the stored best is not an error; it
// yields StatusIgnored with the score that was kept.
package leaderboard

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrAuth        = errors.New("invalid score secret")
	ErrValidation  = errors.New("invalid submission")
	ErrAnomaly     = errors.New("score not backed by session")
	ErrPersistence = errors.New("leaderboard unavailable")
)

const (
	DefaultSlack       = 5000
	DefaultLimit       = 20
	MaxLimit           = 50
	DefaultMaxNickname = 20
)

type Entry struct {
	Nickname  string    `json:"nickname"`
	Mode      string    `json:"mode"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Submission struct {
	Nickname string
	Score    float64
	Mode     string
	Secret   string
}

// Evidence is what the hub observed about the submitting connection.
type Evidence struct {
	LastScore  int
	HasSession bool
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusIgnored Status = "ignored"
)

type Result struct {
	Status   Status `json:"status"`
	Nickname string `json:"nickname"`
	Mode     string `json:"mode"`
	Score    int    `json:"score"`
}

// Store persists best scores.
type Store interface {
	// Upsert stores score for (nickname, mode) only if there is no row yet
	// or score is strictly greater, as one atomic step. It returns whether
	// the row changed and the best score now stored.
	Upsert(ctx context.Context, nickname, mode string, score int) (updated bool, best int, err error)
	// Top lists entries by score descending, at most limit of them.
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// Rules are the submission limits. Ceilings also defines the set of
// accepted modes.
type Rules struct {
	Secret      string
	Ceilings    map[string]int
	Slack       int
	MaxNickname int
}

type Service struct {
	store Store
	rules Rules
	limit int
}

// NewService wraps store. limit is the default listing size.
func NewService(store Store, rules Rules, limit int) *Service {
	if rules.Slack < 0 {
		rules.Slack = 0
	}
	if rules.MaxNickname <= 0 {
		rules.MaxNickname = DefaultMaxNickname
	}
	return &Service{store: store, rules: rules, limit: clampLimit(limit, DefaultLimit)}
}

// Modes lists the accepted modes in name order.
func (s *Service) Modes() []string {
	out := make([]string, 0, len(s.rules.Ceilings))
	for m := range s.rules.Ceilings {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Submit validates sub and records it.
func (s *Service) Submit(ctx context.Context, sub Submission, ev Evidence) (Result, error) {
	if subtle.ConstantTimeCompare([]byte(sub.Secret), []byte(s.rules.Secret)) != 1 {
		return Result{}, ErrAuth
	}
	nick, score, err := s.validate(sub)
	if err != nil {
		return Result{}, err
	}
	if !ev.HasSession {
		return Result{}, fmt.Errorf("%w: no live session", ErrAnomaly)
	}
	if score > ev.LastScore+s.rules.Slack {
		return Result{}, fmt.Errorf("%w: %d over last reported %d", ErrAnomaly, score, ev.LastScore)
	}

	updated, best, err := s.store.Upsert(ctx, nick, sub.Mode, score)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	res := Result{Status: StatusIgnored, Nickname: nick, Mode: sub.Mode, Score: best}
	if updated {
		res.Status = StatusSuccess
	}
	return res, nil
}

func (s *Service) validate(sub Submission) (string, int, error) {
	nick := strings.TrimSpace(sub.Nickname)
	if nick == "" || utf8.RuneCountInString(nick) > s.rules.MaxNickname {
		return "", 0, fmt.Errorf("%w: nickname must be 1-%d characters", ErrValidation, s.rules.MaxNickname)
	}
	ceiling, ok := s.rules.Ceilings[sub.Mode]
	if !ok {
		return "", 0, fmt.Errorf("%w: unknown mode %q", ErrValidation, sub.Mode)
	}
	v := sub.Score
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) {
		return "", 0, fmt.Errorf("%w: score must be a non-negative integer", ErrValidation)
	}
	if v > float64(ceiling) {
		return "", 0, fmt.Errorf("%w: score exceeds %d for mode %s", ErrValidation, ceiling, sub.Mode)
	}
	return nick, int(v), nil
}

// Top lists the best scores. limit <= 0 uses the service default.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.store.Top(ctx, clampLimit(limit, s.limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rows, nil
}

func clampLimit(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n
}
