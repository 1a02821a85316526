package httpserver

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 25 * time.Second
	wsMaxMessage = 64 << 10
	wsSendBuffer = 64
)

var errSlowConsumer = errors.New("send buffer full")
var errConnClosed = errors.New("connection closed")

// wsConn adapts a websocket to hub.Conn. Send only queues; writePump does
// the network writes.
type wsConn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws, send: make(chan []byte, wsSendBuffer), done: make(chan struct{})}
}

func (c *wsConn) Send(b []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errSlowConsumer
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade")
		return
	}
	c := newWSConn(ws)
	id, err := s.hub.Join(r.Context(), c)
	if err != nil {
		_ = ws.Close()
		return
	}
	log.Info().Str("conn", id).Str("ip", r.RemoteAddr).Msg("ws connected")

	go c.writePump()
	c.readPump(func(frame []byte) { s.hub.Handle(id, frame) })

	s.hub.Leave(id)
	_ = c.Close()
	log.Info().Str("conn", id).Msg("ws disconnected")
}

func (c *wsConn) readPump(handle func([]byte)) {
	c.ws.SetReadLimit(wsMaxMessage)
	_ = c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("ws read")
			}
			return
		}
		handle(data)
	}
}

// writePump owns all writes to the socket. It exits when the hub closes the
// connection or a write fails, and closes the socket so readPump returns too.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
