// internal/store/memory.go
//
// In-memory implementations of leaderboard.Store and settings.Store.
// Used when durability is not required (STORE=memory) and in tests.
//
// Characteristics:
//   - Best scores keyed by (nickname, mode) in a map.
//   - Concurrency-safe via RWMutex; the compare-and-swap in Upsert runs
//     under the write lock, so concurrent submissions cannot lose a higher
//     score.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mptetris/tetris-server/internal/leaderboard"
	"github.com/mptetris/tetris-server/internal/settings"
)

type rankKey struct {
	nickname string
	mode     string
}

// Ranks is a map-based leaderboard.Store.
type Ranks struct {
	mu   sync.RWMutex
	rows map[rankKey]leaderboard.Entry
}

// NewRanks constructs an empty in-memory leaderboard.
func NewRanks() *Ranks {
	return &Ranks{rows: make(map[rankKey]leaderboard.Entry)}
}

// Upsert keeps the higher of the stored and submitted score.
func (m *Ranks) Upsert(ctx context.Context, nickname, mode string, score int) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := rankKey{nickname, mode}
	if cur, ok := m.rows[k]; ok && score <= cur.Score {
		return false, cur.Score, nil
	}
	m.rows[k] = leaderboard.Entry{Nickname: nickname, Mode: mode, Score: score, UpdatedAt: time.Now().UTC()}
	return true, score, nil
}

// Top sorts a copy of all rows by score, earliest record first on ties.
func (m *Ranks) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	m.mu.RLock()
	out := make([]leaderboard.Entry, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Settings is a map-based settings.Store.
type Settings struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewSettings() *Settings {
	return &Settings{vals: make(map[string]string)}
}

func (m *Settings) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Settings) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

var (
	_ leaderboard.Store = (*Ranks)(nil)
	_ settings.Store    = (*Settings)(nil)
)
