package game

// Collides reports whether piece, anchored at `at` and shifted by offset,
// overlaps a settled cell or leaves the grid. Unsettled cells never block.
//
// Every legality test in this package (move, rotate, gravity, hard drop)
// goes through this predicate.
func Collides(piece Piece, at Placement, grid Grid, offset Point) bool {
	for y, row := range piece.Shape {
		for x, c := range row {
			if c.Empty() {
				continue
			}
			gx := at.X + x + offset.X
			gy := at.Y + y + offset.Y
			if !grid.Inside(gx, gy) {
				return true
			}
			if grid[gy][gx].Settled {
				return true
			}
		}
	}
	return false
}
