package game

import (
	"context"
	"time"
)

// Action is a player input applied between gravity ticks.
type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionRotateCW
	ActionRotateCCW
	ActionSoftDropStart // pause gravity and drop one row
	ActionSoftDropEnd   // resume gravity
	ActionHardDrop
	ActionBoom
)

// FallInterval is the gravity period for a level.
func FallInterval(level int) time.Duration {
	d := 600*time.Millisecond - time.Duration(level)*50*time.Millisecond
	if d < 100*time.Millisecond {
		return 100 * time.Millisecond
	}
	return d
}

// Runner drives a Game with a gravity ticker and an input channel.
// All game access happens on the goroutine running Run.
type Runner struct {
	game     *Game
	input    chan Action
	control  chan func(*Game)
	onChange func(*Game, StepResult)
}

// NewRunner wraps g. onChange, if set, is called after every state change
// from the Run goroutine.
func NewRunner(g *Game, onChange func(*Game, StepResult)) *Runner {
	return &Runner{
		game:     g,
		input:    make(chan Action, 16),
		control:  make(chan func(*Game), 4),
		onChange: onChange,
	}
}

// Send queues an action; it drops the action when the queue is full.
func (r *Runner) Send(a Action) bool {
	select {
	case r.input <- a:
		return true
	default:
		return false
	}
}

// Do runs fn against the game on the runner goroutine, e.g. to apply a
// server-pushed threshold or boom. Like Send it never blocks.
func (r *Runner) Do(fn func(*Game)) bool {
	select {
	case r.control <- fn:
		return true
	default:
		return false
	}
}

// Run ticks gravity until the game ends or ctx is cancelled. The ticker is
// stopped before Run returns, so no gravity step can fire after game over.
func (r *Runner) Run(ctx context.Context) error {
	level := r.game.Level()
	ticker := time.NewTicker(FallInterval(level))
	defer ticker.Stop()
	paused := false

	r.changed(StepResult{})
	for {
		var res StepResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if paused {
				continue
			}
			res = r.game.Drop()
		case fn := <-r.control:
			fn(r.game)
		case a := <-r.input:
			switch a {
			case ActionLeft:
				r.game.Move(-1)
			case ActionRight:
				r.game.Move(1)
			case ActionRotateCW:
				r.game.Rotate(1)
			case ActionRotateCCW:
				r.game.Rotate(-1)
			case ActionSoftDropStart:
				ticker.Stop()
				paused = true
				res = r.game.Drop()
			case ActionSoftDropEnd:
				if paused {
					paused = false
					ticker.Reset(FallInterval(r.game.Level()))
				}
			case ActionHardDrop:
				res = r.game.HardDrop()
			case ActionBoom:
				r.game.Boom()
			}
		}

		if r.game.Over() {
			ticker.Stop()
			r.changed(res)
			return nil
		}
		if lv := r.game.Level(); lv != level && !paused {
			level = lv
			ticker.Reset(FallInterval(level))
		}
		r.changed(res)
	}
}

func (r *Runner) changed(res StepResult) {
	if r.onChange != nil {
		r.onChange(r.game, res)
	}
}
