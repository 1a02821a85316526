package game

// NewGrid returns a height x width grid of empty cells.
func NewGrid(height, width int) Grid {
	g := make(Grid, height)
	for y := range g {
		g[y] = emptyRow(width)
	}
	return g
}

func emptyRow(width int) []Cell {
	return make([]Cell, width)
}

// Clone returns a deep copy; no row slice is shared with g.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

// Height returns the number of rows.
func (g Grid) Height() int { return len(g) }

// Width returns the number of columns (0 for an empty grid).
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Inside reports whether (x, y) lies on the grid.
func (g Grid) Inside(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < len(g[y])
}

// RowFull reports whether every cell of row y is occupied.
func (g Grid) RowFull(y int) bool {
	for _, c := range g[y] {
		if c.Empty() {
			return false
		}
	}
	return true
}

// RowSettled reports whether every cell of row y is settled.
func (g Grid) RowSettled(y int) bool {
	for _, c := range g[y] {
		if !c.Settled {
			return false
		}
	}
	return true
}

// RowSum returns the sum of weights in row y.
func (g Grid) RowSum(y int) int {
	sum := 0
	for _, c := range g[y] {
		sum += c.Weight
	}
	return sum
}

// Valid checks shape and cell invariants against the expected dimensions.
// Used for grids that arrive from outside the process.
func (g Grid) Valid(height, width int) bool {
	if len(g) != height {
		return false
	}
	for _, row := range g {
		if len(row) != width {
			return false
		}
		for _, c := range row {
			if !c.Kind.Valid() || c.Weight < 0 || c.Weight > 9 {
				return false
			}
			if c.Empty() && (c.Weight != 0 || c.Settled) {
				return false
			}
		}
	}
	return true
}

// without returns a copy of g with row y removed and an empty row
// prepended, so the height is unchanged.
func (g Grid) without(y int) Grid {
	out := make(Grid, 0, len(g))
	out = append(out, emptyRow(g.Width()))
	for i, row := range g {
		if i == y {
			continue
		}
		out = append(out, append([]Cell(nil), row...))
	}
	return out
}
