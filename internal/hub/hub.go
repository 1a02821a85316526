// internal/hub/hub.go
//
// Session broadcast hub.
// Responsibilities:
//   - Track every live connection and the last session it reported.
//   - Republish sessions to all observers through a Fanout strategy.
//   - Own the process-wide clear threshold (apply, persist, rebroadcast).
//     Writes go through one saver goroutine that only ever stores the
//     newest value, so the persisted threshold cannot fall behind.
//   - Route score submissions to the leaderboard and reply to the submitter.
//   - Serve the privileged commands (admin auth, boom, threshold).
//
// Notes:
//   - Everything above runs on the single Run goroutine; no locks.
//   - Rejected or failed client messages are dropped, never answered.
//   - A connection whose Send fails is closed and removed.
package hub

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mptetris/tetris-server/internal/game"
	"github.com/mptetris/tetris-server/internal/leaderboard"
	"github.com/mptetris/tetris-server/internal/protocol"
)

var ErrStopped = errors.New("hub stopped")

// Scorer records finished games.
type Scorer interface {
	Submit(ctx context.Context, sub leaderboard.Submission, ev leaderboard.Evidence) (leaderboard.Result, error)
}

// ThresholdSaver persists the clear threshold.
type ThresholdSaver interface {
	SetThreshold(ctx context.Context, n int) error
}

// Authenticator checks admin credentials.
type Authenticator interface {
	CheckPassword(password string) bool
	Issue() (string, error)
	Verify(token string) error
}

type Options struct {
	Height    int
	Width     int
	Threshold int
	Fanout    Fanout

	Scores   Scorer
	Settings ThresholdSaver
	Auth     Authenticator

	SelfBoom  bool       // players may boom their own board
	ChatRate  rate.Limit // per connection
	ChatBurst int
	IOTimeout time.Duration // for leaderboard and settings writes
}

type client struct {
	conn  Conn
	admin bool
	chat  *rate.Limiter
}

type Hub struct {
	inbox     chan any
	done      chan struct{}
	opts      Options
	reg       *Registry
	clients   map[string]*client
	threshold int
	saves     chan int // latest unsaved threshold; written only by Run
}

func New(opts Options) *Hub {
	if opts.Height <= 0 {
		opts.Height = game.DefaultHeight
	}
	if opts.Width <= 0 {
		opts.Width = game.DefaultWidth
	}
	if opts.Threshold <= 0 {
		opts.Threshold = game.DefaultClearThreshold
	}
	if opts.Fanout == nil {
		opts.Fanout = FullSnapshot{}
	}
	if opts.ChatRate == 0 {
		opts.ChatRate = 3
	}
	if opts.ChatBurst <= 0 {
		opts.ChatBurst = 5
	}
	if opts.IOTimeout <= 0 {
		opts.IOTimeout = 5 * time.Second
	}
	return &Hub{
		inbox:     make(chan any, 256),
		done:      make(chan struct{}),
		opts:      opts,
		reg:       NewRegistry(),
		clients:   make(map[string]*client),
		threshold: opts.Threshold,
		saves:     make(chan int, 1),
	}
}

// Run processes commands until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	log.Info().Str("fanout", h.opts.Fanout.Name()).Int("threshold", h.threshold).Msg("hub running")
	defer close(h.done)

	stop, saved := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(saved)
		h.saveThresholds(stop)
	}()
	defer func() {
		close(stop)
		<-saved
	}()

	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				_ = c.conn.Close()
				delete(h.clients, id)
			}
			return ctx.Err()
		case cmd := <-h.inbox:
			h.handleCommand(cmd)
		}
	}
}

func (h *Hub) enqueue(cmd any) bool {
	select {
	case h.inbox <- cmd:
		return true
	case <-h.done:
		return false
	}
}

// Join registers conn and returns its connection id once the welcome
// frames are queued.
func (h *Hub) Join(ctx context.Context, conn Conn) (string, error) {
	reply := make(chan string, 1)
	if !h.enqueue(join{conn: conn, reply: reply}) {
		return "", ErrStopped
	}
	select {
	case id := <-reply:
		return id, nil
	case <-h.done:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (h *Hub) Leave(id string) {
	h.enqueue(leave{id: id})
}

func (h *Hub) Dispatch(id string, msg protocol.ClientMessage) {
	h.enqueue(inbound{id: id, msg: msg})
}

// Handle parses a raw frame from id and dispatches it. Unparseable frames
// are dropped.
func (h *Hub) Handle(id string, frame []byte) {
	msg, err := protocol.ParseClient(frame)
	if err != nil {
		log.Debug().Str("conn", id).Err(err).Msg("dropped frame")
		return
	}
	h.Dispatch(id, msg)
}

func (h *Hub) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case join:
		id := uuid.NewString()
		h.clients[id] = &client{
			conn: c.conn,
			chat: rate.NewLimiter(h.opts.ChatRate, h.opts.ChatBurst),
		}
		log.Debug().Str("conn", id).Int("clients", len(h.clients)).Msg("joined")
		h.sendTo(id, protocol.MsgWelcome, protocol.Welcome{
			ConnectionID: id,
			Threshold:    h.threshold,
			Height:       h.opts.Height,
			Width:        h.opts.Width,
		})
		h.sendTo(id, protocol.MsgThreshold, protocol.Threshold{Value: h.threshold})
		h.sendTo(id, protocol.MsgSessionUpdate, h.reg.Snapshot())
		c.reply <- id
	case leave:
		h.drop(c.id)
	case inbound:
		if _, ok := h.clients[c.id]; !ok {
			return
		}
		h.handleMessage(c.id, c.msg)
	case submitted:
		h.sendTo(c.id, protocol.MsgScoreResult, c.result)
	case query:
		c.fn(h)
	}
}

func (h *Hub) handleMessage(id string, msg protocol.ClientMessage) {
	switch m := msg.(type) {
	case protocol.UpdateState:
		if !m.Grid.Valid(h.opts.Height, h.opts.Width) {
			log.Debug().Str("conn", id).Msg("dropped update: bad grid")
			return
		}
		h.reg.Upsert(id, protocol.Session{
			Nickname: strings.TrimSpace(m.Nickname),
			Grid:     m.Grid,
			Score:    m.Score,
			Mode:     m.Mode,
		})
		h.publish(Change{ID: id})
	case protocol.SubmitScore:
		h.submit(id, m)
	case protocol.ChatMessage:
		if !h.clients[id].chat.Allow() {
			log.Debug().Str("conn", id).Msg("dropped chat: rate limited")
			return
		}
		h.broadcast(protocol.MsgChat, m)
	case protocol.AdminAuth:
		h.adminAuth(id, m)
	case protocol.AdminBoom:
		if !h.clients[id].admin && !(h.opts.SelfBoom && m.TargetID == id) {
			log.Debug().Str("conn", id).Msg("dropped boom: not authorized")
			return
		}
		h.boom(m.TargetID, id)
	case protocol.AdminThreshold:
		if !h.clients[id].admin {
			log.Debug().Str("conn", id).Msg("dropped threshold: not authorized")
			return
		}
		h.setThreshold(m.Threshold)
	}
}

// submit snapshots the evidence now and writes off-loop; the result comes
// back through the inbox so only the loop touches connections.
func (h *Hub) submit(id string, m protocol.SubmitScore) {
	if h.opts.Scores == nil {
		return
	}
	sess, ok := h.reg.Get(id)
	ev := leaderboard.Evidence{LastScore: sess.Score, HasSession: ok}
	sub := leaderboard.Submission{Nickname: m.Nickname, Score: m.Score, Mode: m.Mode, Secret: m.Secret}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.IOTimeout)
		defer cancel()
		res, err := h.opts.Scores.Submit(ctx, sub, ev)
		if err != nil {
			log.Debug().Str("conn", id).Err(err).Msg("dropped submission")
			return
		}
		h.enqueue(submitted{id: id, result: protocol.ScoreResult{
			Status:   string(res.Status),
			Nickname: res.Nickname,
			Mode:     res.Mode,
			Score:    res.Score,
		}})
	}()
}

func (h *Hub) adminAuth(id string, m protocol.AdminAuth) {
	c := h.clients[id]
	ok := false
	if h.opts.Auth != nil {
		if m.Token != "" {
			ok = h.opts.Auth.Verify(m.Token) == nil
		} else {
			ok = h.opts.Auth.CheckPassword(m.Password)
		}
	}
	if !ok {
		log.Warn().Str("conn", id).Msg("admin auth failed")
		h.sendTo(id, protocol.MsgAdminAuthFail, protocol.AdminAuthFail{})
		return
	}
	token := m.Token
	if token == "" {
		var err error
		if token, err = h.opts.Auth.Issue(); err != nil {
			log.Error().Err(err).Msg("issue admin token")
			h.sendTo(id, protocol.MsgAdminAuthFail, protocol.AdminAuthFail{})
			return
		}
	}
	c.admin = true
	log.Info().Str("conn", id).Msg("admin authenticated")
	h.sendTo(id, protocol.MsgAdminAuthOK, protocol.AdminAuthOK{Token: token})
}

// boom removes the lowest redline row from target's published board and
// tells the target which row went. Nothing happens when no row qualifies.
func (h *Hub) boom(target, by string) (int, bool) {
	sess, ok := h.reg.Get(target)
	if !ok {
		return -1, false
	}
	grid, row, removed := game.RemoveRedline(sess.Grid, h.threshold)
	if !removed {
		return -1, false
	}
	sess.Grid = grid
	h.reg.Upsert(target, sess)
	log.Info().Str("target", target).Str("by", by).Int("row", row).Msg("boom")
	h.sendTo(target, protocol.MsgBoom, protocol.Boom{Row: row, Threshold: h.threshold, By: by})
	h.publish(Change{ID: target})
	return row, true
}

func (h *Hub) setThreshold(n int) {
	if n <= 0 || n == h.threshold {
		return
	}
	h.threshold = n
	log.Info().Int("threshold", n).Msg("clear threshold changed")
	h.broadcast(protocol.MsgThreshold, protocol.Threshold{Value: n})

	h.queueSave(n)
}

// queueSave replaces any threshold still waiting to be written with n.
func (h *Hub) queueSave(n int) {
	if h.opts.Settings == nil {
		return
	}
	select {
	case <-h.saves:
	default:
	}
	h.saves <- n
}

// saveThresholds writes queued thresholds one at a time, in order. A value
// still queued when stop closes is written before it returns.
func (h *Hub) saveThresholds(stop <-chan struct{}) {
	for {
		select {
		case n := <-h.saves:
			h.saveThreshold(n)
		case <-stop:
			select {
			case n := <-h.saves:
				h.saveThreshold(n)
			default:
			}
			return
		}
	}
}

func (h *Hub) saveThreshold(n int) {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.IOTimeout)
	defer cancel()
	if err := h.opts.Settings.SetThreshold(ctx, n); err != nil {
		log.Error().Err(err).Int("threshold", n).Msg("persist threshold")
	}
}

func (h *Hub) publish(ch Change) {
	b, err := h.opts.Fanout.Frame(h.reg, ch)
	if err != nil {
		log.Error().Err(err).Msg("encode sessions")
		return
	}
	h.sendAll(b)
}

func (h *Hub) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("type", t).Msg("encode broadcast")
		return
	}
	h.sendAll(b)
}

func (h *Hub) sendAll(b []byte) {
	var failed []string
	for id, c := range h.clients {
		if err := c.conn.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		h.drop(id)
	}
}

func (h *Hub) sendTo(id, t string, payload any) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("type", t).Msg("encode")
		return
	}
	if err := c.conn.Send(b); err != nil {
		h.drop(id)
	}
}

// drop closes id's connection, forgets its session and republishes.
func (h *Hub) drop(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	_ = c.conn.Close()
	delete(h.clients, id)
	log.Debug().Str("conn", id).Int("clients", len(h.clients)).Msg("left")
	if h.reg.Remove(id) {
		h.publish(Change{ID: id, Removed: true})
	}
}
