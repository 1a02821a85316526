// internal/game/engine.go
//
// Board simulation for a single player.
// Responsibilities:
//   - Hold the settled stack and the falling piece (current + next).
//   - Apply moves, rotations (with kick search), gravity and hard drops.
//   - Settle pieces, run the line sweep and accumulate score/rows.
//   - Detect the terminal state (a piece settling in the top buffer row).
//
// Notes:
//   - The stack only ever contains settled cells; the falling piece is
//     drawn on top of it by View() as unsettled cells.
//   - Illegal actions are rejected by Collides and leave state untouched.
//   - Nothing here returns an error.
package game

const (
	DefaultHeight = 20
	DefaultWidth  = 12
)

// Options configures a new Game. Zero fields take defaults.
type Options struct {
	Height    int
	Width     int
	Threshold int
	Seed      int64 // 0 seeds from the clock
}

// Game is the state of one player's board.
type Game struct {
	stack     Grid
	queue     Queue
	at        Placement
	threshold int
	score     int
	rows      int
	over      bool
}

// New constructs a game with an empty stack and the first piece spawned.
func New(opts Options) *Game {
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultClearThreshold
	}
	g := &Game{
		stack:     NewGrid(opts.Height, opts.Width),
		queue:     NewQueue(NewSpawner(opts.Seed)),
		threshold: opts.Threshold,
	}
	g.at = g.spawnPoint()
	return g
}

func (g *Game) spawnPoint() Placement {
	return Placement{X: g.stack.Width()/2 - 2, Y: 0}
}

// Move shifts the piece dx columns if the target is legal.
func (g *Game) Move(dx int) bool {
	if g.over || Collides(g.queue.Current, g.at, g.stack, Point{X: dx}) {
		return false
	}
	g.at.X += dx
	return true
}

// Rotate turns the piece a quarter in dir, kicking sideways if needed.
// When no kick position is legal the shape and origin stay as they were.
func (g *Game) Rotate(dir int) bool {
	if g.over {
		return false
	}
	rotated := Rotate(g.queue.Current, dir)
	at, ok := Kick(rotated, g.at, g.stack)
	if !ok {
		return false
	}
	g.queue.Current = rotated
	g.at = at
	return true
}

// Drop advances the piece one row. When it cannot move down it settles.
func (g *Game) Drop() StepResult {
	if g.over {
		return StepResult{Over: true}
	}
	if !Collides(g.queue.Current, g.at, g.stack, Point{Y: 1}) {
		g.at.Y++
		return StepResult{Moved: true}
	}
	return g.settle(StepResult{})
}

// HardDrop moves the piece as far down as it goes and settles it.
func (g *Game) HardDrop() StepResult {
	if g.over {
		return StepResult{Over: true}
	}
	res := StepResult{}
	for !Collides(g.queue.Current, g.at, g.stack, Point{Y: 1}) {
		g.at.Y++
		res.Moved = true
	}
	return g.settle(res)
}

// settle merges the piece, sweeps, checks for top-out, then spawns the
// next piece unless the game just ended.
func (g *Game) settle(res StepResult) StepResult {
	merged := Merge(g.stack, g.queue.Current, g.at)
	swept, sweep := Sweep(merged, g.threshold)
	g.stack = swept
	g.score += sweep.ScoreDelta
	g.rows += sweep.RowsCleared

	res.Settled = true
	res.Sweep = sweep
	if g.at.Y < 1 {
		g.over = true
		res.Over = true
		return res
	}
	g.queue.Advance()
	g.at = g.spawnPoint()
	return res
}

// Boom removes the lowest settled redline row from the stack.
// It returns the removed row index, or -1 when nothing qualified.
func (g *Game) Boom() (int, bool) {
	if g.over {
		return -1, false
	}
	out, row, ok := RemoveRedline(g.stack, g.threshold)
	if ok {
		g.stack = out
	}
	return row, ok
}

// SetThreshold changes the clear threshold for future sweeps.
func (g *Game) SetThreshold(n int) {
	if n > 0 {
		g.threshold = n
	}
}

// View returns the stack with the falling piece drawn as unsettled cells.
// Each call builds a new grid; the stack is never modified.
func (g *Game) View() Grid {
	out := g.stack.Clone()
	if g.over {
		return out
	}
	for y, row := range g.queue.Current.Shape {
		for x, c := range row {
			if c.Empty() {
				continue
			}
			gx, gy := g.at.X+x, g.at.Y+y
			if out.Inside(gx, gy) && !out[gy][gx].Settled {
				out[gy][gx] = Cell{Kind: c.Kind, Weight: c.Weight}
			}
		}
	}
	return out
}

// Stack returns a copy of the settled cells only.
func (g *Game) Stack() Grid { return g.stack.Clone() }

// Warnings lists full rows of the current view below the threshold.
func (g *Game) Warnings() []int { return WarningRows(g.View(), g.threshold) }

func (g *Game) Current() Piece       { return g.queue.Current.Clone() }
func (g *Game) Next() Piece          { return g.queue.Next.Clone() }
func (g *Game) Placement() Placement { return g.at }
func (g *Game) Threshold() int       { return g.threshold }
func (g *Game) Score() int           { return g.score }
func (g *Game) Rows() int            { return g.rows }
func (g *Game) Over() bool           { return g.over }

// Level rises by one every ten cleared rows.
func (g *Game) Level() int { return g.rows / 10 }
