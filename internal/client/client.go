// Package client is the websocket side of a headless player: it dials the
// hub, learns its connection id and board dimensions, and exchanges
// protocol envelopes.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mptetris/tetris-server/internal/protocol"
)

const writeWait = 10 * time.Second

type Client struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	Welcome protocol.Welcome
}

// Dial connects to url (ws:// or wss://) and waits for the welcome frame.
func Dial(ctx context.Context, url string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{ws: ws}
	if dl, ok := ctx.Deadline(); ok {
		_ = ws.SetReadDeadline(dl)
	}
	for {
		env, err := c.Read()
		if err != nil {
			ws.Close()
			return nil, fmt.Errorf("await welcome: %w", err)
		}
		if env.T != protocol.MsgWelcome {
			continue
		}
		if c.Welcome, err = protocol.DecodePayload[protocol.Welcome](env); err != nil {
			ws.Close()
			return nil, err
		}
		break
	}
	_ = ws.SetReadDeadline(time.Time{})
	return c, nil
}

// ID is the connection id the hub assigned.
func (c *Client) ID() string { return c.Welcome.ConnectionID }

// Send writes one envelope. Safe for concurrent use.
func (c *Client) Send(t string, payload any) error {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// Read blocks for the next envelope. Only one goroutine may read.
func (c *Client) Read() (protocol.Envelope, error) {
	_, b, err := c.ws.ReadMessage()
	if err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.DecodeEnvelope(b)
}

// CloseOnDone closes the socket when ctx ends, unblocking Read.
func (c *Client) CloseOnDone(ctx context.Context) {
	go func() {
		<-ctx.Done()
		c.Close()
	}()
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
