package game

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func fillRows(g Grid, from, to int, skipCol int) {
	for y := from; y <= to; y++ {
		for x := range g[y] {
			if x == skipCol {
				continue
			}
			g[y][x] = Cell{Kind: KindO, Weight: 1, Settled: true}
		}
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	for _, k := range Kinds {
		for _, dir := range []int{1, -1} {
			p := NewPiece(k)
			r := p
			for i := 0; i < 4; i++ {
				r = Rotate(r, dir)
			}
			if !reflect.DeepEqual(r, p) {
				t.Fatalf("%s dir=%d: four rotations changed the piece", k, dir)
			}
		}
	}
}

func TestRotateClockwiseWeights(t *testing.T) {
	p := NewPiece(KindT)
	got := Rotate(p, 1).Weights()
	want := [][]int{{0, 1, 0}, {7, 8, 0}, {0, 5, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rotated T = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(p.Weights(), [][]int{{0, 0, 0}, {1, 8, 5}, {0, 7, 0}}) {
		t.Fatalf("rotation mutated the source piece")
	}
	back := Rotate(Rotate(p, 1), -1)
	if !reflect.DeepEqual(back, p) {
		t.Fatalf("cw then ccw should restore the piece")
	}
}

func TestCollidesOutsideGrid(t *testing.T) {
	g := NewGrid(20, 12)
	o := NewPiece(KindO)
	cases := []struct {
		name string
		at   Placement
		off  Point
		want bool
	}{
		{"inside", Placement{X: 0, Y: 0}, Point{}, false},
		{"left wall", Placement{X: 0, Y: 0}, Point{X: -1}, true},
		{"right wall", Placement{X: 11, Y: 0}, Point{}, true},
		{"floor", Placement{X: 3, Y: 18}, Point{Y: 1}, true},
		{"above top", Placement{X: 3, Y: -1}, Point{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Collides(o, tc.at, g, tc.off); got != tc.want {
				t.Fatalf("Collides = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCollidesOnlySettledCellsBlock(t *testing.T) {
	g := NewGrid(20, 12)
	o := NewPiece(KindO)
	g[5][5] = Cell{Kind: KindT, Weight: 3}
	if Collides(o, Placement{X: 4, Y: 4}, g, Point{}) {
		t.Fatalf("unsettled cell must not collide")
	}
	g[5][5].Settled = true
	if !Collides(o, Placement{X: 4, Y: 4}, g, Point{}) {
		t.Fatalf("settled cell must collide")
	}
}

func TestRotateKicksOffWall(t *testing.T) {
	g := New(Options{Seed: 1})
	g.queue.Current = NewPiece(KindI)
	g.at = Placement{X: -1, Y: 5} // vertical I hugging the left wall

	if !g.Rotate(1) {
		t.Fatalf("rotation should succeed with a kick")
	}
	if g.at.X != 0 || g.at.Y != 5 {
		t.Fatalf("placement = %+v, want {0 5}", g.at)
	}
	if got := g.queue.Current.Weights()[1]; !reflect.DeepEqual(got, []int{9, 2, 7, 4}) {
		t.Fatalf("rotated I row = %v", got)
	}
}

func TestRotateRevertsWhenNoKickFits(t *testing.T) {
	g := New(Options{Seed: 1})
	fillRows(g.stack, 5, 8, 5)
	g.queue.Current = NewPiece(KindI)
	g.at = Placement{X: 4, Y: 5} // vertical I sits in the column-5 well

	before := g.queue.Current
	if g.Rotate(1) {
		t.Fatalf("rotation should fail inside a one-wide well")
	}
	if g.at != (Placement{X: 4, Y: 5}) {
		t.Fatalf("placement changed to %+v", g.at)
	}
	if !reflect.DeepEqual(g.queue.Current, before) {
		t.Fatalf("shape changed after failed rotation")
	}
}

func TestGravitySettlesIAtBottom(t *testing.T) {
	g := New(Options{Seed: 7})
	g.queue.Current = NewPiece(KindI)
	g.at = g.spawnPoint()
	if g.at != (Placement{X: 4, Y: 0}) {
		t.Fatalf("spawn = %+v, want top-center {4 0}", g.at)
	}

	var res StepResult
	for i := 0; i < 40; i++ {
		res = g.Drop()
		if res.Settled {
			break
		}
	}
	if !res.Settled || res.Over {
		t.Fatalf("expected a normal settle, got %+v", res)
	}

	stack := g.Stack()
	want := []int{4, 7, 2, 9}
	for i, w := range want {
		c := stack[16+i][5]
		if c.Kind != KindI || c.Weight != w || !c.Settled {
			t.Fatalf("cell (5,%d) = %+v, want I/%d settled", 16+i, c, w)
		}
	}
	if g.at != g.spawnPoint() {
		t.Fatalf("next piece not spawned at top: %+v", g.at)
	}
}

func TestSettleClearsRowAndScores(t *testing.T) {
	g := New(Options{Seed: 3})
	for x := range g.stack[19] {
		if x != 5 {
			g.stack[19][x] = Cell{Kind: KindJ, Weight: 9, Settled: true}
		}
	}
	g.queue.Current = NewPiece(KindI)
	g.at = g.spawnPoint()

	res := g.HardDrop()
	if !res.Settled || res.Sweep.RowsCleared != 1 || res.Sweep.ScoreDelta != 108 {
		t.Fatalf("result = %+v, want one row worth 108", res)
	}
	if g.Score() != 108 || g.Rows() != 1 {
		t.Fatalf("score=%d rows=%d", g.Score(), g.Rows())
	}
	if c := g.Stack()[19][5]; c.Weight != 2 || c.Kind != KindI {
		t.Fatalf("remaining I cells did not shift down: %+v", c)
	}
}

func TestTopOutEndsGame(t *testing.T) {
	g := New(Options{Seed: 5})
	fillRows(g.stack, 1, 19, -1)
	g.queue.Current = NewPiece(KindO)
	g.at = g.spawnPoint()

	res := g.Drop()
	if !res.Settled || !res.Over || !g.Over() {
		t.Fatalf("expected terminal settle, got %+v", res)
	}
	if g.Move(1) || g.Rotate(1) {
		t.Fatalf("moves must be rejected after game over")
	}
	if r := g.Drop(); r.Settled || r.Moved {
		t.Fatalf("gravity must stop after game over: %+v", r)
	}
}

func TestBoomRemovesRedline(t *testing.T) {
	g := New(Options{Seed: 9})
	fillRows(g.stack, 18, 19, -1)

	row, ok := g.Boom()
	if !ok || row != 19 {
		t.Fatalf("boom row=%d ok=%v, want 19", row, ok)
	}
	if !g.stack.RowFull(19) || g.stack.RowFull(18) {
		t.Fatalf("expected one redline row left at the bottom")
	}
	if _, ok := g.Boom(); !ok {
		t.Fatalf("second boom should remove the remaining row")
	}
	if _, ok := g.Boom(); ok {
		t.Fatalf("third boom should be a no-op")
	}
}

func TestViewDrawsUnsettledPiece(t *testing.T) {
	g := New(Options{Seed: 11})
	g.queue.Current = NewPiece(KindO)
	g.at = Placement{X: 0, Y: 0}

	v := g.View()
	if c := v[0][0]; c.Kind != KindO || c.Settled {
		t.Fatalf("view cell = %+v, want unsettled O", c)
	}
	if !g.stack[0][0].Empty() {
		t.Fatalf("view leaked into the stack")
	}
}

func TestSpawnerUniform(t *testing.T) {
	s := NewSpawner(42)
	counts := map[Kind]int{}
	for i := 0; i < 7000; i++ {
		p := s.Spawn()
		counts[p.Kind]++
	}
	for _, k := range Kinds {
		if counts[k] < 800 || counts[k] > 1200 {
			t.Fatalf("kind %s drawn %d times out of 7000", k, counts[k])
		}
	}
}

func TestQueueAdvance(t *testing.T) {
	q := NewQueue(NewSpawner(1))
	next := q.Next
	q.Advance()
	if !reflect.DeepEqual(q.Current, next) {
		t.Fatalf("advance should promote the look-ahead piece")
	}
}

func TestRunnerStopsAtGameOver(t *testing.T) {
	g := New(Options{Seed: 5})
	fillRows(g.stack, 1, 19, -1)

	var last StepResult
	r := NewRunner(g, func(_ *Game, res StepResult) { last = res })
	r.Send(ActionHardDrop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run returned %v, want nil at game over", err)
	}
	if !g.Over() || !last.Over {
		t.Fatalf("expected game over, last=%+v", last)
	}
}

func TestRunnerHonorsCancel(t *testing.T) {
	r := NewRunner(New(Options{Seed: 1}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != context.Canceled {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}

func TestRunnerSoftDropPausesGravity(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the gravity ticker")
	}
	var y atomic.Int64
	r := NewRunner(New(Options{Seed: 1}), func(g *Game, _ StepResult) {
		y.Store(int64(g.Placement().Y))
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Send(ActionSoftDropStart)
	time.Sleep(1500 * time.Millisecond) // two and a half fall intervals
	if got := y.Load(); got != 1 {
		t.Fatalf("y while soft-dropping = %d, want 1", got)
	}

	r.Send(ActionSoftDropEnd)
	time.Sleep(1300 * time.Millisecond)
	if got := y.Load(); got < 2 {
		t.Fatalf("y after release = %d, gravity did not resume", got)
	}
}

func TestWarningsListRedlineRows(t *testing.T) {
	g := New(Options{Seed: 2})
	fillRows(g.stack, 19, 19, -1)
	if got := g.Warnings(); !reflect.DeepEqual(got, []int{19}) {
		t.Fatalf("warnings = %v, want [19]", got)
	}
	g.SetThreshold(12)
	if got := g.Warnings(); len(got) != 0 {
		t.Fatalf("row at threshold still flagged: %v", got)
	}
}

func TestFallInterval(t *testing.T) {
	if FallInterval(0) != 600*time.Millisecond {
		t.Fatalf("level 0 interval = %v", FallInterval(0))
	}
	if FallInterval(50) != 100*time.Millisecond {
		t.Fatalf("interval must floor at 100ms, got %v", FallInterval(50))
	}
}
