// Package protocol defines the realtime message set exchanged between
// players, spectators and the session hub. Every frame is an Envelope
// whose T names one of the message types below.
package protocol

import (
	"encoding/json"
)

// client -> hub
const (
	MsgUpdateState    = "update_state"
	MsgSubmitScore    = "submit_score"
	MsgChat           = "chat_message"
	MsgAdminAuth      = "admin_auth"
	MsgAdminBoom      = "admin_boom"
	MsgAdminThreshold = "admin_threshold"
)

// hub -> client
const (
	MsgWelcome       = "welcome"
	MsgSessionUpdate = "session_update"
	MsgSessionPatch  = "session_patch"
	MsgThreshold     = "threshold"
	MsgBoom          = "boom"
	MsgScoreResult   = "score_result"
	MsgAdminAuthOK   = "admin_auth_ok"
	MsgAdminAuthFail = "admin_auth_fail"
)

const (
	MaxNickname = 20
	MaxChatText = 200
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
