package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mptetris/tetris-server/internal/auth"
	"github.com/mptetris/tetris-server/internal/httpserver"
	"github.com/mptetris/tetris-server/internal/hub"
	"github.com/mptetris/tetris-server/internal/leaderboard"
	"github.com/mptetris/tetris-server/internal/protocol"
	"github.com/mptetris/tetris-server/internal/store"
)

func startServer(t *testing.T) (string, *store.Ranks) {
	t.Helper()
	ranks := store.NewRanks()
	scores := leaderboard.NewService(ranks, leaderboard.Rules{
		Secret:   "s",
		Ceilings: map[string]int{"MP": 1000000},
		Slack:    leaderboard.DefaultSlack,
	}, 0)
	admin := auth.NewAdmin(auth.Config{Password: "pw", Secret: "k"})
	h := hub.New(hub.Options{Threshold: 30, Scores: scores, Auth: admin})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	ts := httptest.NewServer(httpserver.New(h, scores, admin, httpserver.Options{}).Router())
	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws", ranks
}

func TestDialReadsWelcome(t *testing.T) {
	url, _ := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	if c.ID() == "" || c.Welcome.Threshold != 30 {
		t.Fatalf("welcome = %+v", c.Welcome)
	}
}

func TestPlayerPlaysAndSubmits(t *testing.T) {
	url, ranks := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	p := NewPlayer(c, PlayerOptions{Nickname: "bot", Mode: "MP", Secret: "s", Seed: 7, Think: 5 * time.Millisecond})
	res, err := p.Play(ctx)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Status != protocol.StatusSuccess || res.Nickname != "bot" || res.Mode != "MP" {
		t.Fatalf("result = %+v", res)
	}

	top, _ := ranks.Top(context.Background(), 10)
	if len(top) != 1 || top[0].Score != res.Score {
		t.Fatalf("stored = %+v, result = %+v", top, res)
	}
}
