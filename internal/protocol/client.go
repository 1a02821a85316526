package protocol

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mptetris/tetris-server/internal/game"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrBadPayload  = errors.New("bad payload")
)

// ClientMessage is one of the variants a connection may send to the hub.
type ClientMessage interface {
	Type() string
	validate() error
}

// UpdateState reports the sender's current board.
type UpdateState struct {
	Nickname string    `json:"nickname"`
	Grid     game.Grid `json:"grid"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
}

// SubmitScore asks the hub to record a finished game on the leaderboard.
// Score is kept as a float so that non-integers can be rejected rather
// than silently truncated.
type SubmitScore struct {
	Nickname string  `json:"nickname"`
	Score    float64 `json:"score"`
	Mode     string  `json:"mode"`
	Secret   string  `json:"secret"`
}

// ChatMessage is relayed verbatim to every connection.
type ChatMessage struct {
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

// AdminAuth elevates a connection with either the admin password or a
// previously issued admin token.
type AdminAuth struct {
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

type AdminBoom struct {
	TargetID string `json:"targetId"`
}

type AdminThreshold struct {
	Threshold int `json:"threshold"`
}

func (UpdateState) Type() string    { return MsgUpdateState }
func (SubmitScore) Type() string    { return MsgSubmitScore }
func (ChatMessage) Type() string    { return MsgChat }
func (AdminAuth) Type() string      { return MsgAdminAuth }
func (AdminBoom) Type() string      { return MsgAdminBoom }
func (AdminThreshold) Type() string { return MsgAdminThreshold }

func (m UpdateState) validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(m.Nickname)) > MaxNickname {
		return errors.New("nickname too long")
	}
	if m.Score < 0 {
		return errors.New("negative score")
	}
	if len(m.Grid) == 0 {
		return errors.New("missing grid")
	}
	return nil
}

// Submission fields are checked by the leaderboard service, which owns
// the rules and their error taxonomy.
func (m SubmitScore) validate() error { return nil }

func (m ChatMessage) validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return errors.New("empty chat text")
	}
	if utf8.RuneCountInString(m.Text) > MaxChatText {
		return errors.New("chat text too long")
	}
	return nil
}

func (m AdminAuth) validate() error {
	if m.Password == "" && m.Token == "" {
		return errors.New("missing credential")
	}
	return nil
}

func (m AdminBoom) validate() error {
	if m.TargetID == "" {
		return errors.New("missing targetId")
	}
	return nil
}

func (m AdminThreshold) validate() error {
	if m.Threshold <= 0 {
		return errors.New("threshold must be positive")
	}
	return nil
}

// ParseClient decodes a raw frame into its typed variant.
func ParseClient(b []byte) (ClientMessage, error) {
	env, err := DecodeEnvelope(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	var msg ClientMessage
	switch env.T {
	case MsgUpdateState:
		msg, err = decode[UpdateState](env)
	case MsgSubmitScore:
		msg, err = decode[SubmitScore](env)
	case MsgChat:
		msg, err = decode[ChatMessage](env)
	case MsgAdminAuth:
		msg, err = decode[AdminAuth](env)
	case MsgAdminBoom:
		msg, err = decode[AdminBoom](env)
	case MsgAdminThreshold:
		msg, err = decode[AdminThreshold](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.T)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.T, err)
	}
	if err := msg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.T, err)
	}
	return msg, nil
}

func decode[T ClientMessage](env Envelope) (ClientMessage, error) {
	v, err := DecodePayload[T](env)
	if err != nil {
		return nil, err
	}
	return v, nil
}
