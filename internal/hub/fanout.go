package hub

import (
	"fmt"

	"github.com/mptetris/tetris-server/internal/protocol"
)

// Change names the session that triggered a publish.
type Change struct {
	ID      string
	Removed bool
}

// Fanout decides what every observer receives after a registry change.
// Newly joined connections always get the full mapping first, so a
// strategy only has to describe the change itself.
type Fanout interface {
	Name() string
	Frame(reg *Registry, ch Change) ([]byte, error)
}

// FullSnapshot republishes the entire mapping on every change.
type FullSnapshot struct{}

func (FullSnapshot) Name() string { return "full" }

func (FullSnapshot) Frame(reg *Registry, _ Change) ([]byte, error) {
	return protocol.Encode(protocol.MsgSessionUpdate, reg.Snapshot())
}

// SessionDiff publishes only the session that changed.
type SessionDiff struct{}

func (SessionDiff) Name() string { return "diff" }

func (SessionDiff) Frame(reg *Registry, ch Change) ([]byte, error) {
	var p protocol.SessionPatch
	if s, ok := reg.Get(ch.ID); ok && !ch.Removed {
		p.Upserted = map[string]protocol.Session{ch.ID: s}
	} else {
		p.Removed = []string{ch.ID}
	}
	return protocol.Encode(protocol.MsgSessionPatch, p)
}

// NewFanout resolves a strategy by name; "" selects the full snapshot.
func NewFanout(name string) (Fanout, error) {
	switch name {
	case "", "full":
		return FullSnapshot{}, nil
	case "diff":
		return SessionDiff{}, nil
	}
	return nil, fmt.Errorf("unknown fanout strategy %q", name)
}
