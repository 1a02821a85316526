package hub

import "github.com/mptetris/tetris-server/internal/protocol"

// Conn is the hub's view of a connected socket. Send must not block.
type Conn interface {
	Send([]byte) error
	Close() error
}

// join is issued once per accepted socket.
type join struct {
	conn  Conn
	reply chan<- string
}

// leave is issued on disconnect.
type leave struct {
	id string
}

// inbound is a parsed client message.
type inbound struct {
	id  string
	msg protocol.ClientMessage
}

// submitted carries a finished leaderboard write back to the loop.
type submitted struct {
	id     string
	result protocol.ScoreResult
}

// query runs fn on the hub goroutine; used by the REST surface.
type query struct {
	fn func(h *Hub)
}
