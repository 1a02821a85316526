package game

import (
	"math/rand"
	"time"
)

// catalog holds the canonical rotation-0 shape of every piece. Non-zero
// entries are occupied squares carrying that fixed weight, so a given
// rotation state always yields the same weight layout.
var catalog = map[Kind][][]int{
	KindI: {
		{0, 4, 0, 0},
		{0, 7, 0, 0},
		{0, 2, 0, 0},
		{0, 9, 0, 0},
	},
	KindJ: {
		{0, 3, 0},
		{0, 5, 0},
		{8, 6, 0},
	},
	KindL: {
		{0, 6, 0},
		{0, 1, 0},
		{0, 9, 4},
	},
	KindO: {
		{2, 8},
		{7, 3},
	},
	KindS: {
		{0, 9, 4},
		{3, 6, 0},
		{0, 0, 0},
	},
	KindT: {
		{0, 0, 0},
		{1, 8, 5},
		{0, 7, 0},
	},
	KindZ: {
		{7, 2, 0},
		{0, 6, 8},
		{0, 0, 0},
	},
}

// NewPiece builds a fresh copy of the canonical shape for kind.
// Unknown kinds yield a zero Piece.
func NewPiece(kind Kind) Piece {
	weights, ok := catalog[kind]
	if !ok {
		return Piece{}
	}
	p := Piece{Kind: kind, Shape: make([][]Cell, len(weights))}
	for y, row := range weights {
		p.Shape[y] = make([]Cell, len(row))
		for x, w := range row {
			if w != 0 {
				p.Shape[y][x] = Cell{Kind: kind, Weight: w}
			}
		}
	}
	return p
}

// Spawner draws pieces uniformly at random, independent of history.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner seeds a spawner; seed 0 seeds from the clock.
func NewSpawner(seed int64) *Spawner {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Spawner{rng: rand.New(rand.NewSource(seed))}
}

// Spawn returns a new piece of a uniformly chosen kind at rotation 0.
func (s *Spawner) Spawn() Piece {
	return NewPiece(Kinds[s.rng.Intn(len(Kinds))])
}

// Queue is the current piece plus exactly one look-ahead piece.
type Queue struct {
	Current Piece
	Next    Piece
	spawner *Spawner
}

// NewQueue fills both slots from s.
func NewQueue(s *Spawner) Queue {
	return Queue{Current: s.Spawn(), Next: s.Spawn(), spawner: s}
}

// Advance promotes Next to Current and draws a new Next.
func (q *Queue) Advance() Piece {
	q.Current = q.Next
	q.Next = q.spawner.Spawn()
	return q.Current
}
