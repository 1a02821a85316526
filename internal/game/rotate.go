package game

// Rotate returns a new piece rotated a quarter turn: the matrix is
// transposed, then each row is reversed for dir > 0 (clockwise) or the row
// order is reversed for dir <= 0 (counter-clockwise). p is not modified.
func Rotate(p Piece, dir int) Piece {
	n := p.Size()
	out := Piece{Kind: p.Kind, Shape: make([][]Cell, n)}
	for y := 0; y < n; y++ {
		out.Shape[y] = make([]Cell, n)
		for x := 0; x < n; x++ {
			out.Shape[y][x] = p.Shape[x][y]
		}
	}
	if dir > 0 {
		for _, row := range out.Shape {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		return out
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		out.Shape[i], out.Shape[j] = out.Shape[j], out.Shape[i]
	}
	return out
}

// Kick searches for a legal horizontal position for p near at. The origin
// itself is tried first, then offsets +1, -1, +2, -2, ... up to the width of
// p. It reports false when every candidate collides.
func Kick(p Piece, at Placement, grid Grid) (Placement, bool) {
	if !Collides(p, at, grid, Point{}) {
		return at, true
	}
	for mag := 1; mag <= p.Size(); mag++ {
		for _, dx := range [2]int{mag, -mag} {
			if !Collides(p, at, grid, Point{X: dx}) {
				return Placement{X: at.X + dx, Y: at.Y}, true
			}
		}
	}
	return at, false
}
