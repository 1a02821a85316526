package client

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mptetris/tetris-server/internal/game"
	"github.com/mptetris/tetris-server/internal/protocol"
)

// ErrNoResult means the hub never answered the score submission. The hub
// drops rejected submissions silently, so this is the only signal.
var ErrNoResult = errors.New("no score result")

type PlayerOptions struct {
	Nickname  string
	Mode      string
	Secret    string
	Seed      int64
	Think     time.Duration // delay between inputs
	ResultTTL time.Duration // how long to wait for score_result
}

// Player plays one game on a local simulation and mirrors it to the hub.
type Player struct {
	c    *Client
	opts PlayerOptions
	rng  *rand.Rand
}

func NewPlayer(c *Client, opts PlayerOptions) *Player {
	if opts.Think <= 0 {
		opts.Think = 150 * time.Millisecond
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = 5 * time.Second
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Player{c: c, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// Play runs until the game ends and the submission is answered, or ctx
// is cancelled.
func (p *Player) Play(ctx context.Context) (protocol.ScoreResult, error) {
	w := p.c.Welcome
	g := game.New(game.Options{Height: w.Height, Width: w.Width, Threshold: w.Threshold, Seed: p.opts.Seed})
	runner := game.NewRunner(g, p.report)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.c.CloseOnDone(ctx)

	results := make(chan protocol.ScoreResult, 1)
	var result protocol.ScoreResult

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return p.listen(ctx, runner, results) })
	eg.Go(func() error { return p.drive(ctx, runner) })
	eg.Go(func() error {
		defer cancel()
		if err := runner.Run(ctx); err != nil {
			return err
		}
		log.Info().Int("score", g.Score()).Int("rows", g.Rows()).Msg("game over")

		if err := p.c.Send(protocol.MsgSubmitScore, protocol.SubmitScore{
			Nickname: p.opts.Nickname,
			Score:    float64(g.Score()),
			Mode:     p.opts.Mode,
			Secret:   p.opts.Secret,
		}); err != nil {
			return err
		}
		select {
		case result = <-results:
			return nil
		case <-time.After(p.opts.ResultTTL):
			return ErrNoResult
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return result, err
	}
	if result.Status == "" {
		return result, ErrNoResult
	}
	return result, nil
}

// report mirrors every state change to the hub. It runs on the runner
// goroutine.
func (p *Player) report(g *game.Game, res game.StepResult) {
	if res.Settled {
		if rows := g.Warnings(); len(rows) > 0 {
			log.Debug().Str("player", p.opts.Nickname).Ints("redline", rows).Msg("rows under threshold")
		}
	}
	err := p.c.Send(protocol.MsgUpdateState, protocol.UpdateState{
		Nickname: p.opts.Nickname,
		Grid:     g.View(),
		Score:    g.Score(),
		Mode:     p.opts.Mode,
	})
	if err != nil {
		log.Debug().Err(err).Msg("report state")
	}
}

// listen applies hub events to the local game.
func (p *Player) listen(ctx context.Context, r *game.Runner, results chan<- protocol.ScoreResult) error {
	for {
		env, err := p.c.Read()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch env.T {
		case protocol.MsgThreshold:
			if v, err := protocol.DecodePayload[protocol.Threshold](env); err == nil {
				r.Do(func(g *game.Game) { g.SetThreshold(v.Value) })
			}
		case protocol.MsgBoom:
			r.Do(func(g *game.Game) {
				if row, ok := g.Boom(); ok {
					log.Info().Int("row", row).Msg("boom")
				}
			})
		case protocol.MsgScoreResult:
			if v, err := protocol.DecodePayload[protocol.ScoreResult](env); err == nil {
				select {
				case results <- v:
				default:
				}
			}
		}
	}
}

// drive feeds random inputs, favouring sideways moves and ending each
// piece with a hard drop now and then.
func (p *Player) drive(ctx context.Context, r *game.Runner) error {
	actions := []game.Action{
		game.ActionLeft, game.ActionLeft, game.ActionRight, game.ActionRight,
		game.ActionRotateCW, game.ActionRotateCCW, game.ActionHardDrop,
	}
	t := time.NewTicker(p.opts.Think)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Send(actions[p.rng.Intn(len(actions))])
		}
	}
}
