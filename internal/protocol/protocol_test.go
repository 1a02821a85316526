package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mptetris/tetris-server/internal/game"
)

func TestMessageConstants(t *testing.T) {
	cases := map[string]string{
		MsgUpdateState:   "update_state",
		MsgSessionUpdate: "session_update",
		MsgChat:          "chat_message",
		MsgAdminAuth:     "admin_auth",
		MsgAdminAuthOK:   "admin_auth_ok",
		MsgAdminAuthFail: "admin_auth_fail",
		MsgAdminBoom:     "admin_boom",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("constant = %q, want %q", got, want)
		}
	}
}

func TestEncodeRejectsNilPayload(t *testing.T) {
	if _, err := Encode(MsgWelcome, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
	if _, err := Encode("", Welcome{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
}

func TestEnvelopeShape(t *testing.T) {
	b := MustEncode(MsgThreshold, Threshold{Value: 55})
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["t"]) != `"threshold"` || string(raw["p"]) != `{"value":55}` {
		t.Fatalf("unexpected envelope %s", b)
	}
}

func TestParseUpdateState(t *testing.T) {
	g := game.NewGrid(2, 2)
	g[1][0] = game.Cell{Kind: game.KindI, Weight: 7, Settled: true}
	b := MustEncode(MsgUpdateState, UpdateState{Nickname: "Ada", Grid: g, Score: 40, Mode: "MP"})

	msg, err := ParseClient(b)
	if err != nil {
		t.Fatalf("ParseClient: %v", err)
	}
	u, ok := msg.(UpdateState)
	if !ok {
		t.Fatalf("got %T, want UpdateState", msg)
	}
	if u.Nickname != "Ada" || u.Score != 40 || u.Grid[1][0].Weight != 7 || !u.Grid[1][0].Settled {
		t.Fatalf("decoded %+v", u)
	}
}

func TestParseAdminBoomWireName(t *testing.T) {
	msg, err := ParseClient([]byte(`{"t":"admin_boom","p":{"targetId":"abc"}}`))
	if err != nil {
		t.Fatalf("ParseClient: %v", err)
	}
	if b, ok := msg.(AdminBoom); !ok || b.TargetID != "abc" {
		t.Fatalf("decoded %#v", msg)
	}
}

func TestParseClientRejects(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		want  error
	}{
		{"unknown type", `{"t":"teleport","p":{}}`, ErrUnknownType},
		{"hub-only type", `{"t":"session_update","p":{}}`, ErrUnknownType},
		{"not json", `hello`, ErrBadPayload},
		{"missing type", `{"p":{}}`, ErrBadPayload},
		{"missing payload", `{"t":"chat_message"}`, ErrBadPayload},
		{"wrong field type", `{"t":"update_state","p":{"score":"lots","grid":[[]]}}`, ErrBadPayload},
		{"negative score", `{"t":"update_state","p":{"score":-1,"grid":[[]]}}`, ErrBadPayload},
		{"no grid", `{"t":"update_state","p":{"score":1}}`, ErrBadPayload},
		{"empty chat", `{"t":"chat_message","p":{"nickname":"a","text":"  "}}`, ErrBadPayload},
		{"no credential", `{"t":"admin_auth","p":{}}`, ErrBadPayload},
		{"no target", `{"t":"admin_boom","p":{}}`, ErrBadPayload},
		{"zero threshold", `{"t":"admin_threshold","p":{"threshold":0}}`, ErrBadPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseClient([]byte(tc.frame))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
