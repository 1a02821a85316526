package game

// DefaultClearThreshold is the row weight-sum needed to clear a full row
// when nothing else is configured.
const DefaultClearThreshold = 60

// Merge returns a copy of grid with the occupied cells of piece written at
// `at`, each marked settled and carrying its weight. Cells that fall
// outside the grid are skipped.
func Merge(grid Grid, piece Piece, at Placement) Grid {
	out := grid.Clone()
	for y, row := range piece.Shape {
		for x, c := range row {
			if c.Empty() {
				continue
			}
			gx, gy := at.X+x, at.Y+y
			if out.Inside(gx, gy) {
				out[gy][gx] = Cell{Kind: c.Kind, Weight: c.Weight, Settled: true}
			}
		}
	}
	return out
}

// qualifies reports whether row y is full and reaches the threshold.
func qualifies(g Grid, y, threshold int) bool {
	return g.RowFull(y) && g.RowSum(y) >= threshold
}

// Sweep clears every full row whose weight-sum is at least threshold.
// Rows are scanned bottom to top; each cleared row is replaced by an empty
// row at the top so the height never changes. The score delta is the sum
// of the weights in the cleared rows.
func Sweep(grid Grid, threshold int) (Grid, SweepResult) {
	var res SweepResult
	kept := make(Grid, 0, len(grid))
	for y := len(grid) - 1; y >= 0; y-- {
		if qualifies(grid, y, threshold) {
			res.RowsCleared++
			res.ScoreDelta += grid.RowSum(y)
			res.Cleared = append(res.Cleared, y)
			continue
		}
		kept = append(kept, append([]Cell(nil), grid[y]...))
	}

	out := make(Grid, 0, len(grid))
	for i := 0; i < res.RowsCleared; i++ {
		out = append(out, emptyRow(grid.Width()))
	}
	for i := len(kept) - 1; i >= 0; i-- {
		out = append(out, kept[i])
	}
	return out, res
}

// WarningRows lists full rows whose sum is below threshold, top to bottom.
// It is a view-only property; nothing in the grid records it.
func WarningRows(grid Grid, threshold int) []int {
	var rows []int
	for y := range grid {
		if grid.RowFull(y) && grid.RowSum(y) < threshold {
			rows = append(rows, y)
		}
	}
	return rows
}

// RemoveRedline removes the lowest row that is full, entirely settled and
// below threshold, prepending an empty row. At most one row is removed.
// When no such row exists grid is returned unchanged with removed=false.
func RemoveRedline(grid Grid, threshold int) (out Grid, row int, removed bool) {
	for y := len(grid) - 1; y >= 0; y-- {
		if !grid.RowFull(y) || !grid.RowSettled(y) {
			continue
		}
		if grid.RowSum(y) < threshold {
			return grid.without(y), y, true
		}
	}
	return grid, -1, false
}
