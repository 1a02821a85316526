package hub

import "github.com/mptetris/tetris-server/internal/protocol"

// Registry maps live connection ids to the latest session each reported.
// It is owned by the Hub goroutine and is not safe for concurrent use.
type Registry struct {
	sessions map[string]protocol.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]protocol.Session)}
}

// Upsert replaces the entry for id.
func (r *Registry) Upsert(id string, s protocol.Session) {
	r.sessions[id] = s
}

// Remove deletes id and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Get(id string) (protocol.Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Snapshot returns a copy of the mapping. Grids are shared; they are
// replaced, never mutated, once stored.
func (r *Registry) Snapshot() protocol.SessionUpdate {
	out := make(protocol.SessionUpdate, len(r.sessions))
	for id, s := range r.sessions {
		out[id] = s
	}
	return out
}

func (r *Registry) Len() int { return len(r.sessions) }
