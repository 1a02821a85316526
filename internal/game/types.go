// internal/game/types.go
//
// Core type definitions for the board simulation.
// Defines:
//   - Kind: which of the seven pieces occupies a cell (or none).
//   - Cell: one grid square with its numeric weight and settle status.
//   - Grid: the fixed-size board, row-major, row 0 at the top.
//   - Piece / Placement / Point: the falling piece and where it sits.

package game

// Kind identifies the piece that occupies a cell.
// The zero value is an empty cell.
type Kind string

const (
	KindEmpty Kind = ""
	KindI     Kind = "I"
	KindJ     Kind = "J"
	KindL     Kind = "L"
	KindO     Kind = "O"
	KindS     Kind = "S"
	KindT     Kind = "T"
	KindZ     Kind = "Z"
)

// Kinds lists the seven piece kinds in catalog order.
var Kinds = [...]Kind{KindI, KindJ, KindL, KindO, KindS, KindT, KindZ}

// Valid reports whether k is empty or one of the seven piece kinds.
func (k Kind) Valid() bool {
	if k == KindEmpty {
		return true
	}
	for _, c := range Kinds {
		if k == c {
			return true
		}
	}
	return false
}

// Cell is a single grid square.
//
// Invariant: Kind == KindEmpty implies Weight == 0 and Settled == false.
type Cell struct {
	Kind    Kind `json:"kind"`
	Weight  int  `json:"weight"`
	Settled bool `json:"settled"`
}

// Empty reports whether no piece occupies the cell.
func (c Cell) Empty() bool { return c.Kind == KindEmpty }

// Grid is an ordered sequence of rows, top row first.
type Grid [][]Cell

// Point is an (x, y) offset in grid coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Placement is the top-left anchor of a piece in grid coordinates.
type Placement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Piece is a falling piece: a square matrix of cells, Kind on occupied
// squares. Shapes are never mutated once built; rotation returns a new Piece.
type Piece struct {
	Kind  Kind     `json:"kind"`
	Shape [][]Cell `json:"shape"`
}

// Size returns the side length of the piece matrix.
func (p Piece) Size() int { return len(p.Shape) }

// Clone returns a deep copy of p.
func (p Piece) Clone() Piece {
	out := Piece{Kind: p.Kind, Shape: make([][]Cell, len(p.Shape))}
	for y, row := range p.Shape {
		out.Shape[y] = append([]Cell(nil), row...)
	}
	return out
}

// Weights returns the weight matrix of the piece (0 on empty squares).
func (p Piece) Weights() [][]int {
	out := make([][]int, len(p.Shape))
	for y, row := range p.Shape {
		out[y] = make([]int, len(row))
		for x, c := range row {
			out[y][x] = c.Weight
		}
	}
	return out
}

// SweepResult reports what a single settle pass removed.
type SweepResult struct {
	RowsCleared int   `json:"rowsCleared"`
	ScoreDelta  int   `json:"scoreDelta"`
	Cleared     []int `json:"cleared,omitempty"` // row indices in the pre-sweep grid, bottom first
}

// StepResult describes the outcome of one gravity step or hard drop.
type StepResult struct {
	Moved   bool        // piece moved down at least one row
	Settled bool        // piece merged into the stack
	Sweep   SweepResult // populated when Settled
	Over    bool        // game entered the terminal state
}
