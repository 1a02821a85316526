package hub

import (
	"context"

	"github.com/mptetris/tetris-server/internal/protocol"
)

// ask runs fn on the hub goroutine and waits for its result.
func ask[T any](ctx context.Context, h *Hub, fn func(h *Hub) T) (T, error) {
	var zero T
	reply := make(chan T, 1)
	if !h.enqueue(query{fn: func(h *Hub) { reply <- fn(h) }}) {
		return zero, ErrStopped
	}
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Sessions returns a copy of the current mapping.
func (h *Hub) Sessions(ctx context.Context) (protocol.SessionUpdate, error) {
	return ask(ctx, h, func(h *Hub) protocol.SessionUpdate { return h.reg.Snapshot() })
}

// LastScore is the score last reported by connection id, if it has a
// live session.
func (h *Hub) LastScore(ctx context.Context, id string) (int, bool, error) {
	type res struct {
		score int
		ok    bool
	}
	r, err := ask(ctx, h, func(h *Hub) res {
		s, ok := h.reg.Get(id)
		return res{s.Score, ok}
	})
	return r.score, r.ok, err
}

func (h *Hub) Threshold(ctx context.Context) (int, error) {
	return ask(ctx, h, func(h *Hub) int { return h.threshold })
}

// SetThreshold applies, persists and rebroadcasts n.
func (h *Hub) SetThreshold(ctx context.Context, n int) error {
	_, err := ask(ctx, h, func(h *Hub) struct{} {
		h.setThreshold(n)
		return struct{}{}
	})
	return err
}

// Boom removes the lowest redline row from session id on behalf of by.
// It reports the removed row, or false when nothing qualified.
func (h *Hub) Boom(ctx context.Context, id, by string) (int, bool, error) {
	type res struct {
		row int
		ok  bool
	}
	r, err := ask(ctx, h, func(h *Hub) res {
		row, ok := h.boom(id, by)
		return res{row, ok}
	})
	return r.row, r.ok, err
}

// Clients is the number of open connections, observers included.
func (h *Hub) Clients(ctx context.Context) (int, error) {
	return ask(ctx, h, func(h *Hub) int { return len(h.clients) })
}
