package protocol

import "github.com/mptetris/tetris-server/internal/game"

// Session is the latest state a connection reported, as published to
// observers.
type Session struct {
	Nickname string    `json:"nickname"`
	Grid     game.Grid `json:"grid"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
}

// SessionUpdate is the full connection-id -> session mapping.
type SessionUpdate map[string]Session

// SessionPatch carries only what changed since the previous publish.
type SessionPatch struct {
	Upserted map[string]Session `json:"upserted,omitempty"`
	Removed  []string           `json:"removed,omitempty"`
}

type Welcome struct {
	ConnectionID string `json:"connectionId"`
	Threshold    int    `json:"threshold"`
	Height       int    `json:"height"`
	Width        int    `json:"width"`
}

type Threshold struct {
	Value int `json:"value"`
}

// Boom tells the targeted session which row was removed from its board.
type Boom struct {
	Row       int    `json:"row"`
	Threshold int    `json:"threshold"`
	By        string `json:"by,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusIgnored = "ignored"
)

type ScoreResult struct {
	Status   string `json:"status"`
	Nickname string `json:"nickname"`
	Mode     string `json:"mode"`
	Score    int    `json:"score"`
}

type AdminAuthOK struct {
	Token string `json:"token"`
}

type AdminAuthFail struct{}
